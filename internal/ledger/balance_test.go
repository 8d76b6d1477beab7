package ledger

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(amount string) Entry {
	return Entry{ID: uuid.New(), Amount: d(amount)}
}

func voidOf(e Entry) Entry {
	id := e.ID
	return Entry{ID: uuid.New(), Amount: e.Amount, ReversesID: &id}
}

// ─── Balance Calculator ─────────────────────────────────────────────────────

func TestTotalAmount(t *testing.T) {
	tests := []struct {
		name string
		acc  Account
		want string
	}{
		{"debt ignores additions", Account{Principal: d("1000"), Additions: []Entry{entry("50")}}, "1000"},
		{"loan adds additions", Account{Principal: d("500"), Revolving: true, Additions: []Entry{entry("200"), entry("25.50")}}, "725.5"},
		{"loan without additions", Account{Principal: d("500"), Revolving: true}, "500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalAmount(tt.acc); !got.Equal(d(tt.want)) {
				t.Errorf("TotalAmount() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTotalPaid_EmptyLedger(t *testing.T) {
	if got := TotalPaid(Account{Principal: d("10")}); !got.IsZero() {
		t.Errorf("TotalPaid() = %s, want 0", got)
	}
}

func TestTotalPaid_SubtractsVoids(t *testing.T) {
	p1, p2 := entry("100"), entry("40")
	acc := Account{Principal: d("300"), Payments: []Entry{p1, p2, voidOf(p2)}}
	if got := TotalPaid(acc); !got.Equal(d("100")) {
		t.Errorf("TotalPaid() = %s, want 100", got)
	}
	if got := Remaining(acc); !got.Equal(d("200")) {
		t.Errorf("Remaining() = %s, want 200", got)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name     string
		payments []Entry
		want     Status
	}{
		{"no payments", nil, StatusPending},
		{"partial", []Entry{entry("1")}, StatusPartiallyPaid},
		{"exact", []Entry{entry("60"), entry("40")}, StatusPaid},
		{"overpaid", []Entry{entry("150")}, StatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := Account{Principal: d("100"), Payments: tt.payments}
			if got := StatusOf(acc); got != tt.want {
				t.Errorf("StatusOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusOf_ZeroPrincipalIsPaid(t *testing.T) {
	if got := StatusOf(Account{}); got != StatusPaid {
		t.Errorf("StatusOf(zero) = %q, want paid", got)
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]Status{
		"paid":           StatusPaid,
		"partially_paid": StatusPartiallyPaid,
		"partial":        StatusPartiallyPaid,
		"pending":        StatusPending,
		"":               StatusPending,
		"bogus":          StatusPending,
	}
	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   Status
		wantOK bool
	}{
		{"pending", StatusPending, true},
		{"partially_paid", StatusPartiallyPaid, true},
		{"partial", StatusPartiallyPaid, true},
		{"paid", StatusPaid, true},
		{"", "", false},
		{"bogus", "", false},
		{"Paid", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseStatus(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCompute_IsIdempotent(t *testing.T) {
	acc := Account{
		Principal: d("500"),
		Revolving: true,
		Additions: []Entry{entry("200")},
		Payments:  []Entry{entry("123.45")},
	}
	first := Compute(acc)
	second := Compute(acc)
	if !first.Total.Equal(second.Total) || !first.Paid.Equal(second.Paid) ||
		!first.Remaining.Equal(second.Remaining) || first.Status != second.Status {
		t.Fatalf("Compute() not stable: %+v vs %+v", first, second)
	}
	if !first.Remaining.Equal(d("576.55")) {
		t.Errorf("Remaining = %s, want 576.55", first.Remaining)
	}
}

func TestCompute_NoFloatingPointDrift(t *testing.T) {
	acc := Account{Principal: d("0.3")}
	for i := 0; i < 3; i++ {
		acc.Payments = append(acc.Payments, entry("0.1"))
	}
	b := Compute(acc)
	if !b.Remaining.IsZero() {
		t.Errorf("Remaining = %s, want exactly 0", b.Remaining)
	}
	if b.Status != StatusPaid {
		t.Errorf("Status = %q, want paid", b.Status)
	}
}

// ─── Validation ─────────────────────────────────────────────────────────────

func TestValidatePayment(t *testing.T) {
	acc := Account{Principal: d("100"), Payments: []Entry{entry("40")}}
	tests := []struct {
		amount string
		want   error
	}{
		{"0", ErrNonPositiveAmount},
		{"-5", ErrNonPositiveAmount},
		{"60.01", ErrExceedsRemaining},
		{"60", nil},
		{"0.01", nil},
	}
	for _, tt := range tests {
		err := ValidatePayment(acc, d(tt.amount))
		if !errors.Is(err, tt.want) {
			t.Errorf("ValidatePayment(%s) = %v, want %v", tt.amount, err, tt.want)
		}
	}
}

func TestValidateAddition(t *testing.T) {
	if err := ValidateAddition(d("0")); !errors.Is(err, ErrNonPositiveAmount) {
		t.Errorf("ValidateAddition(0) = %v, want ErrNonPositiveAmount", err)
	}
	if err := ValidateAddition(d("1")); err != nil {
		t.Errorf("ValidateAddition(1) = %v, want nil", err)
	}
}

func TestVoidTarget(t *testing.T) {
	p1, p2 := entry("10"), entry("20")
	v2 := voidOf(p2)
	entries := []Entry{p1, p2, v2}

	if got, err := VoidTarget(entries, p1.ID); err != nil || got.ID != p1.ID {
		t.Fatalf("VoidTarget(p1) = %v, %v", got.ID, err)
	}
	if _, err := VoidTarget(entries, p2.ID); !errors.Is(err, ErrAlreadyVoided) {
		t.Errorf("VoidTarget(p2) error = %v, want ErrAlreadyVoided", err)
	}
	if _, err := VoidTarget(entries, v2.ID); !errors.Is(err, ErrVoidOfVoid) {
		t.Errorf("VoidTarget(void) error = %v, want ErrVoidOfVoid", err)
	}
	if _, err := VoidTarget(entries, uuid.New()); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("VoidTarget(unknown) error = %v, want ErrEntryNotFound", err)
	}
}

func TestValidateAdditionVoid(t *testing.T) {
	acc := Account{
		Principal: d("500"),
		Revolving: true,
		Additions: []Entry{entry("200")},
		Payments:  []Entry{entry("600")},
	}
	if err := ValidateAdditionVoid(acc, d("200")); !errors.Is(err, ErrVoidOverpays) {
		t.Errorf("ValidateAdditionVoid() = %v, want ErrVoidOverpays", err)
	}
	if err := ValidateAdditionVoid(acc, d("100")); err != nil {
		t.Errorf("ValidateAdditionVoid(100) = %v, want nil", err)
	}
}

// ─── Scenarios ──────────────────────────────────────────────────────────────

func TestScenario_DebtPaidInTwoInstalments(t *testing.T) {
	acc := Account{Principal: d("1000")}

	pay := func(amount string) error {
		if err := ValidatePayment(acc, d(amount)); err != nil {
			return err
		}
		acc.Payments = append(acc.Payments, entry(amount))
		return nil
	}

	if err := pay("400"); err != nil {
		t.Fatalf("pay(400) error: %v", err)
	}
	if b := Compute(acc); !b.Remaining.Equal(d("600")) || b.Status != StatusPartiallyPaid {
		t.Fatalf("after 400: remaining=%s status=%s", b.Remaining, b.Status)
	}

	if err := pay("600"); err != nil {
		t.Fatalf("pay(600) error: %v", err)
	}
	if b := Compute(acc); !b.Remaining.IsZero() || b.Status != StatusPaid {
		t.Fatalf("after 600: remaining=%s status=%s", b.Remaining, b.Status)
	}

	if err := pay("1"); !errors.Is(err, ErrExceedsRemaining) {
		t.Fatalf("pay(1) error = %v, want ErrExceedsRemaining", err)
	}
	if len(acc.Payments) != 2 {
		t.Errorf("ledger length = %d, want 2", len(acc.Payments))
	}
}

func TestScenario_LoanWithAddition(t *testing.T) {
	acc := Account{Principal: d("500"), Revolving: true}
	acc.Additions = append(acc.Additions, entry("200"))
	if got := TotalAmount(acc); !got.Equal(d("700")) {
		t.Fatalf("TotalAmount = %s, want 700", got)
	}
	if err := ValidatePayment(acc, d("700")); err != nil {
		t.Fatalf("ValidatePayment(700) error: %v", err)
	}
	acc.Payments = append(acc.Payments, entry("700"))
	b := Compute(acc)
	if !b.Remaining.IsZero() || b.Status != StatusPaid {
		t.Errorf("remaining=%s status=%s, want 0 paid", b.Remaining, b.Status)
	}
}

func TestRemainingInvariant_AfterMixedOperations(t *testing.T) {
	acc := Account{Principal: d("250"), Revolving: true}
	steps := []struct {
		addition bool
		amount   string
	}{
		{true, "100"}, {false, "50"}, {false, "75.25"}, {true, "10"}, {false, "0.75"},
	}
	for _, s := range steps {
		if s.addition {
			acc.Additions = append(acc.Additions, entry(s.amount))
			continue
		}
		if err := ValidatePayment(acc, d(s.amount)); err != nil {
			t.Fatalf("ValidatePayment(%s) error: %v", s.amount, err)
		}
		acc.Payments = append(acc.Payments, entry(s.amount))

		want := TotalAmount(acc).Sub(TotalPaid(acc))
		if got := Remaining(acc); !got.Equal(want) {
			t.Fatalf("Remaining = %s, want %s", got, want)
		}
	}
	if got := Remaining(acc); !got.Equal(d("234")) {
		t.Errorf("final Remaining = %s, want 234", got)
	}
}

func TestValidatePrincipal(t *testing.T) {
	acc := Account{Principal: d("1000"), Payments: []Entry{entry("400")}}

	tests := []struct {
		principal string
		want      error
	}{
		{"1200", nil},
		{"400", nil},
		{"399.99", ErrPrincipalBelowPaid},
		{"0", ErrNonPositiveAmount},
	}
	for _, tt := range tests {
		if err := ValidatePrincipal(acc, d(tt.principal)); !errors.Is(err, tt.want) {
			t.Errorf("ValidatePrincipal(%s) = %v, want %v", tt.principal, err, tt.want)
		}
	}
	if !acc.Principal.Equal(d("1000")) {
		t.Errorf("ValidatePrincipal mutated the account principal to %s", acc.Principal)
	}
}
