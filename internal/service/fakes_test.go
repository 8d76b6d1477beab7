package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Shared fakes ───────────────────────────────────────────────────────────

type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, filter repository.AuditFilter, page, limit int) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, e := range r.entries {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAuditRepo) actions() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type publishedEvent struct {
	name string
	data interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{event, data})
}

func (p *fakePublisher) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func fixedClock(day string) Clock {
	t, _ := time.Parse(dateLayout, day)
	return func() time.Time { return t.Add(10 * time.Hour) }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// ─── Debts ──────────────────────────────────────────────────────────────────

type fakeDebtRepo struct {
	debts    map[uuid.UUID]model.Debt
	payments []model.Payment
	order    []uuid.UUID
}

func newFakeDebtRepo() *fakeDebtRepo {
	return &fakeDebtRepo{debts: map[uuid.UUID]model.Debt{}}
}

func (r *fakeDebtRepo) load(id uuid.UUID) (*model.Debt, error) {
	debt, ok := r.debts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	debt.Payments = nil
	for _, p := range r.payments {
		if p.DebtID != nil && *p.DebtID == id {
			debt.Payments = append(debt.Payments, p)
		}
	}
	return &debt, nil
}

func (r *fakeDebtRepo) Create(_ context.Context, debt *model.Debt) error {
	debt.ID = uuid.New()
	debt.CreatedAt = time.Now()
	debt.UpdatedAt = debt.CreatedAt
	stored := *debt
	stored.Payments = nil
	r.debts[debt.ID] = stored
	r.order = append(r.order, debt.ID)
	return nil
}

func (r *fakeDebtRepo) Save(_ context.Context, debt *model.Debt) error {
	if _, ok := r.debts[debt.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *debt
	stored.Payments = nil
	r.debts[debt.ID] = stored
	return nil
}

func (r *fakeDebtRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.debts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.debts, id)
	kept := r.payments[:0]
	for _, p := range r.payments {
		if p.DebtID == nil || *p.DebtID != id {
			kept = append(kept, p)
		}
	}
	r.payments = kept
	return nil
}

func (r *fakeDebtRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Debt, error) {
	return r.load(id)
}

func (r *fakeDebtRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.Debt, error) {
	return r.load(id)
}

func (r *fakeDebtRepo) List(_ context.Context, filter repository.DebtFilter, page, limit int) ([]model.Debt, int64, error) {
	var out []model.Debt
	for _, id := range r.order {
		debt, err := r.load(id)
		if err != nil {
			continue
		}
		if filter.Status != "" && debt.Status != filter.Status {
			continue
		}
		if filter.DebtType != "" && debt.DebtType != filter.DebtType {
			continue
		}
		if filter.Search != "" && !matchesDebtSearch(debt, filter.Search) {
			continue
		}
		if !inRange(debt.DebtDate, filter.From, filter.To) {
			continue
		}
		out = append(out, *debt)
	}
	return out, int64(len(out)), nil
}

func (r *fakeDebtRepo) ListAll(_ context.Context, from, to *time.Time) ([]model.Debt, error) {
	var out []model.Debt
	for _, id := range r.order {
		if debt, err := r.load(id); err == nil && inRange(debt.DebtDate, from, to) {
			out = append(out, *debt)
		}
	}
	return out, nil
}

func (r *fakeDebtRepo) ListDue(_ context.Context, before time.Time) ([]model.Debt, error) {
	var out []model.Debt
	for _, id := range r.order {
		debt, err := r.load(id)
		if err != nil || debt.DueDate == nil || debt.DueDate.After(before) {
			continue
		}
		out = append(out, *debt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	return out, nil
}

func matchesDebtSearch(debt *model.Debt, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(debt.DebtorName), search) ||
		strings.Contains(strings.ToLower(debt.Phone), search)
}

func (r *fakeDebtRepo) AddPayment(_ context.Context, payment *model.Payment) error {
	if payment.ReversesID != nil {
		for _, p := range r.payments {
			if p.ReversesID != nil && *p.ReversesID == *payment.ReversesID {
				return repository.ErrDuplicate
			}
		}
	}
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	r.payments = append(r.payments, *payment)
	return nil
}

// ─── Expenses ───────────────────────────────────────────────────────────────

type fakeExpenseRepo struct {
	expenses  map[uuid.UUID]model.Expense
	payments  []model.Payment
	additions []model.Addition
	order     []uuid.UUID
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: map[uuid.UUID]model.Expense{}}
}

func (r *fakeExpenseRepo) load(id uuid.UUID) (*model.Expense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.Payments, e.Additions = nil, nil
	for _, p := range r.payments {
		if p.ExpenseID != nil && *p.ExpenseID == id {
			e.Payments = append(e.Payments, p)
		}
	}
	for _, a := range r.additions {
		if a.ExpenseID == id {
			e.Additions = append(e.Additions, a)
		}
	}
	return &e, nil
}

func (r *fakeExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	stored := *e
	stored.Payments, stored.Additions = nil, nil
	r.expenses[e.ID] = stored
	r.order = append(r.order, e.ID)
	return nil
}

func (r *fakeExpenseRepo) Save(_ context.Context, e *model.Expense) error {
	if _, ok := r.expenses[e.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *e
	stored.Payments, stored.Additions = nil, nil
	r.expenses[e.ID] = stored
	return nil
}

func (r *fakeExpenseRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.expenses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.expenses, id)
	return nil
}

func (r *fakeExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	return r.load(id)
}

func (r *fakeExpenseRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	return r.load(id)
}

func (r *fakeExpenseRepo) List(_ context.Context, filter repository.ExpenseFilter, page, limit int) ([]model.Expense, int64, error) {
	var out []model.Expense
	for _, id := range r.order {
		e, err := r.load(id)
		if err != nil {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.LoanOnly && !e.IsLoan() {
			continue
		}
		if !inRange(e.Date, filter.From, filter.To) {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeExpenseRepo) ListAll(_ context.Context, from, to *time.Time) ([]model.Expense, error) {
	var out []model.Expense
	for _, id := range r.order {
		if e, err := r.load(id); err == nil && inRange(e.Date, from, to) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) AddPayment(_ context.Context, payment *model.Payment) error {
	if payment.ReversesID != nil {
		for _, p := range r.payments {
			if p.ReversesID != nil && *p.ReversesID == *payment.ReversesID {
				return repository.ErrDuplicate
			}
		}
	}
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *fakeExpenseRepo) AddAddition(_ context.Context, addition *model.Addition) error {
	addition.ID = uuid.New()
	addition.CreatedAt = time.Now()
	r.additions = append(r.additions, *addition)
	return nil
}

// ─── Shifts ─────────────────────────────────────────────────────────────────

type fakeShiftRepo struct {
	shifts map[uuid.UUID]model.Shift
	order  []uuid.UUID
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: map[uuid.UUID]model.Shift{}}
}

func (r *fakeShiftRepo) Create(_ context.Context, s *model.Shift) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	r.shifts[s.ID] = *s
	r.order = append(r.order, s.ID)
	return nil
}

func (r *fakeShiftRepo) Save(_ context.Context, s *model.Shift) error {
	r.shifts[s.ID] = *s
	return nil
}

func (r *fakeShiftRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.shifts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.shifts, id)
	return nil
}

func (r *fakeShiftRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *fakeShiftRepo) FindByDateAndType(_ context.Context, date time.Time, shiftType string) (*model.Shift, error) {
	for _, s := range r.shifts {
		if s.Date.Equal(date) && s.Type == shiftType {
			found := s
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeShiftRepo) List(ctx context.Context, from, to *time.Time, page, limit int) ([]model.Shift, int64, error) {
	out, _ := r.ListAll(ctx, from, to)
	return out, int64(len(out)), nil
}

func (r *fakeShiftRepo) ListAll(_ context.Context, from, to *time.Time) ([]model.Shift, error) {
	var out []model.Shift
	for _, id := range r.order {
		if s, ok := r.shifts[id]; ok && inRange(s.Date, from, to) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ─── Inventory ──────────────────────────────────────────────────────────────

type fakeCategoryRepo struct{ items []model.Category }

func (r *fakeCategoryRepo) Create(_ context.Context, c *model.Category) error {
	for _, existing := range r.items {
		if existing.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.ID = uuid.New()
	r.items = append(r.items, *c)
	return nil
}

func (r *fakeCategoryRepo) List(context.Context) ([]model.Category, error) { return r.items, nil }

type fakeUnitRepo struct{ items []model.Unit }

func (r *fakeUnitRepo) Create(_ context.Context, u *model.Unit) error {
	u.ID = uuid.New()
	r.items = append(r.items, *u)
	return nil
}

func (r *fakeUnitRepo) List(context.Context) ([]model.Unit, error) { return r.items, nil }

type fakeProductRepo struct {
	products map[uuid.UUID]model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]model.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	for _, existing := range r.products {
		if existing.SKU == p.SKU {
			return repository.ErrDuplicate
		}
	}
	p.ID = uuid.New()
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter, page, limit int) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if filter.LowStock && !p.IsLowStock() {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, id uuid.UUID, stock decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.CurrentStock = stock
	r.products[id] = p
	return nil
}

func (r *fakeProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(ctx, id)
}

type fakeMovementRepo struct{ items []model.StockMovement }

func (r *fakeMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	r.items = append(r.items, *m)
	return nil
}

func (r *fakeMovementRepo) List(_ context.Context, productID *uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.items {
		if productID == nil || m.ProductID == *productID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

type fakeStatsRepo struct {
	stats model.ProductStats
	top   []model.ProductRanking
}

func (r *fakeStatsRepo) GetProductStats(context.Context) (*model.ProductStats, error) {
	s := r.stats
	return &s, nil
}

func (r *fakeStatsRepo) GetTopMovedProducts(_ context.Context, _ string, limit int) ([]model.ProductRanking, error) {
	return r.top, nil
}

// ─── Users ──────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[uuid.UUID]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) find(match func(model.User) bool) (*model.User, error) {
	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

// ─── Roles ──────────────────────────────────────────────────────────────────

type fakeRoleRepo struct {
	roles map[string]*model.Role
	perms map[string]*model.Permission
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: map[string]*model.Role{}, perms: map[string]*model.Permission{}}
}

func (r *fakeRoleRepo) FindOrCreateRole(_ context.Context, role *model.Role) error {
	if existing, ok := r.roles[role.Name]; ok {
		*role = *existing
		return nil
	}
	role.ID = uuid.New()
	stored := *role
	r.roles[role.Name] = &stored
	return nil
}

func (r *fakeRoleRepo) FindOrCreatePermission(_ context.Context, perm *model.Permission) error {
	if existing, ok := r.perms[perm.Code]; ok {
		*perm = *existing
		return nil
	}
	perm.ID = uuid.New()
	stored := *perm
	r.perms[perm.Code] = &stored
	return nil
}

func (r *fakeRoleRepo) ReplacePermissions(_ context.Context, roleID uuid.UUID, permIDs []uuid.UUID) error {
	for _, role := range r.roles {
		if role.ID != roleID {
			continue
		}
		role.Permissions = nil
		for _, id := range permIDs {
			for _, p := range r.perms {
				if p.ID == id {
					role.Permissions = append(role.Permissions, *p)
				}
			}
		}
		return nil
	}
	return repository.ErrNotFound
}

func (r *fakeRoleRepo) ListAll(context.Context) ([]model.Role, error) {
	out := make([]model.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, *role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRoleRepo) ListPermissions(context.Context) ([]model.Permission, error) {
	out := make([]model.Permission, 0, len(r.perms))
	for _, p := range r.perms {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeRoleRepo) GetPermissionsByRoleName(_ context.Context, roleName string) ([]string, error) {
	role, ok := r.roles[roleName]
	if !ok {
		return nil, nil
	}
	codes := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		codes = append(codes, p.Code)
	}
	return codes, nil
}
