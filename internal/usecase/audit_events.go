package usecase

import (
	"context"
	"encoding/json"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/audit"
)

// PersistAuditEvents stores interview-scoped audit events as interview history.
// Events without an interview id are only logged.
func PersistAuditEvents(repo domain.InterviewEventRepository) func(ctx context.Context, e audit.Event) error {
	return func(ctx context.Context, e audit.Event) error {
		if e.InterviewID == "" {
			return nil
		}
		var details []byte
		if len(e.Details) > 0 {
			var err error
			if details, err = json.Marshal(e.Details); err != nil {
				return err
			}
		}
		return repo.Create(ctx, &domain.InterviewEvent{
			InterviewID: e.InterviewID,
			Event:       string(e.Event),
			FromStatus:  e.FromStatus,
			ToStatus:    e.ToStatus,
			ActorID:     e.ActorID,
			Details:     details,
			CreatedAt:   e.Timestamp,
		})
	}
}
