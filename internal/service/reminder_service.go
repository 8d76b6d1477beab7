package service

import (
	"context"
	"log"
	"time"

	"backoffice/internal/metrics"
	"backoffice/internal/repository"
)

// DueDebtResponse is an unpaid debt inside the reminder window.
type DueDebtResponse struct {
	DebtResponse
	DaysUntilDue int  `json:"days_until_due"` // negative once overdue
	Overdue      bool `json:"overdue"`
}

// ReminderService finds unpaid debts that are due soon or overdue and pushes
// them to connected dashboards.
type ReminderService interface {
	DueDebts(ctx context.Context) ([]DueDebtResponse, error)
	Scan(ctx context.Context) (int, error)
	Run(ctx context.Context, interval time.Duration)
}

type reminderService struct {
	debtRepo   repository.DebtRepository
	publisher  EventPublisher
	windowDays int
	now        Clock
}

func NewReminderService(debtRepo repository.DebtRepository, publisher EventPublisher, windowDays int, now Clock) ReminderService {
	if windowDays < 0 {
		windowDays = 0
	}
	return &reminderService{
		debtRepo:   debtRepo,
		publisher:  publisherOrNop(publisher),
		windowDays: windowDays,
		now:        clockOrNow(now),
	}
}

func (s *reminderService) DueDebts(ctx context.Context) ([]DueDebtResponse, error) {
	today := truncateDay(s.now())
	until := today.AddDate(0, 0, s.windowDays)

	debts, err := s.debtRepo.ListDue(ctx, until)
	if err != nil {
		return nil, repoError("Debt", "list", err)
	}

	res := make([]DueDebtResponse, 0, len(debts))
	for i := range debts {
		d := &debts[i]
		if d.DueDate == nil {
			continue
		}
		// the stored status may lag behind the ledger; trust the ledger
		if d.Refresh().Remaining.IsPositive() {
			days := int(truncateDay(*d.DueDate).Sub(today).Hours() / 24)
			res = append(res, DueDebtResponse{
				DebtResponse: toDebtResponse(d),
				DaysUntilDue: days,
				Overdue:      days < 0,
			})
		}
	}
	return res, nil
}

// Scan runs one reminder pass and returns how many debts are due.
func (s *reminderService) Scan(ctx context.Context) (int, error) {
	due, err := s.DueDebts(ctx)
	if err != nil {
		metrics.DueScans.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.DueScans.WithLabelValues("ok").Inc()
	metrics.DueDebts.Set(float64(len(due)))

	if len(due) > 0 {
		overdue := 0
		for _, d := range due {
			if d.Overdue {
				overdue++
			}
		}
		log.Printf("Due-debt scan: %d debt(s) due within %d day(s), %d overdue", len(due), s.windowDays, overdue)
		s.publisher.Publish(EventDebtsDue, due)
	}
	return len(due), nil
}

// Run scans immediately and then every interval until ctx is cancelled.
func (s *reminderService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Scan(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Due-debt scan failed: %v", err)
		}
		select {
		case <-ctx.Done():
			log.Println("Due-debt scanner stopped")
			return
		case <-ticker.C:
		}
	}
}
