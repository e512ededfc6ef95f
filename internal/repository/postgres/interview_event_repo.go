package postgres

import (
	"context"

	"go-interview-scheduler/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type interviewEventRepo struct {
	db *pgxpool.Pool
}

func NewInterviewEventRepository(db *pgxpool.Pool) domain.InterviewEventRepository {
	return &interviewEventRepo{db: db}
}

func (r *interviewEventRepo) Create(ctx context.Context, ev *domain.InterviewEvent) error {
	query := `
		INSERT INTO interview_events (interview_id, event, from_status, to_status, actor_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var details *string
	if len(ev.Details) > 0 {
		s := string(ev.Details)
		details = &s
	}
	return conn(ctx, r.db).QueryRow(ctx, query,
		ev.InterviewID, ev.Event, nullableString(ev.FromStatus), nullableString(ev.ToStatus),
		nullableString(ev.ActorID), details, ev.CreatedAt,
	).Scan(&ev.ID)
}

func (r *interviewEventRepo) ListByInterview(ctx context.Context, interviewID string) ([]domain.InterviewEvent, error) {
	query := `
		SELECT id, interview_id, event, COALESCE(from_status, ''), COALESCE(to_status, ''),
		       COALESCE(actor_id, ''), details, created_at
		FROM interview_events
		WHERE interview_id = $1
		ORDER BY created_at, id`

	rows, err := conn(ctx, r.db).Query(ctx, query, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.InterviewEvent
	for rows.Next() {
		var ev domain.InterviewEvent
		if err := rows.Scan(
			&ev.ID, &ev.InterviewID, &ev.Event, &ev.FromStatus, &ev.ToStatus,
			&ev.ActorID, &ev.Details, &ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
