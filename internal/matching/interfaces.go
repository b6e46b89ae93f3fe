package matching

import (
	"context"

	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/report"
	"lostfound/internal/domain/user"
)

type ReportStore interface {
	Find(ctx context.Context, f report.Filter) ([]report.Report, error)
	GetByID(ctx context.Context, id string) (*report.Report, error)
	Save(ctx context.Context, r *report.Report) error
}

type NotificationStore interface {
	Save(ctx context.Context, n *notification.Notification) error
}

// UserLookup returns (nil, nil) for a user that does not exist.
type UserLookup interface {
	Resolve(ctx context.Context, id string) (*user.User, error)
}

// RealtimeChannel delivers a payload to the user's live session, if any.
// An offline user is not an error; the result is only logged.
type RealtimeChannel interface {
	Push(userID string, payload any) error
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
