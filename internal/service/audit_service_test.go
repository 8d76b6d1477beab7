package service

import (
	"context"
	"testing"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
)

func TestGetAuditLogs(t *testing.T) {
	repo := &fakeAuditRepo{}
	ctx := context.Background()
	userID := uuid.New()

	_ = repo.Log(ctx, &model.AuditLog{Action: model.ActionCreateDebt, EntityID: "d1"})
	_ = repo.Log(ctx, &model.AuditLog{Action: model.ActionAddPayment, EntityID: "d1", UserID: &userID, User: &model.User{Username: "amina"}})

	svc := NewAuditService(repo)
	logs, total, err := svc.GetAuditLogs(ctx, repository.AuditFilter{}, 1, 20)
	if err != nil {
		t.Fatalf("GetAuditLogs() error: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if logs[0].Username != "System" || logs[0].UserID != "" {
		t.Errorf("logs[0] = %s/%s, want System with no user id", logs[0].Username, logs[0].UserID)
	}
	if logs[1].Username != "amina" || logs[1].UserID != userID.String() {
		t.Errorf("logs[1] = %s/%s, want amina/%s", logs[1].Username, logs[1].UserID, userID)
	}

	filtered, _, _ := svc.GetAuditLogs(ctx, repository.AuditFilter{Action: model.ActionAddPayment}, 1, 20)
	if len(filtered) != 1 {
		t.Errorf("GetAuditLogs(action) = %d, want 1", len(filtered))
	}
}
