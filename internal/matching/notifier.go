package matching

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/report"
	"lostfound/internal/domain/user"
)

const (
	titleCandidate = "Potential Match Found!"
	titleApproved  = "Match Approved"
)

// Notifier records candidate-match notifications for both sides of every
// pair and pushes them to whoever is online.
type Notifier struct {
	users         UserLookup
	notifications NotificationStore
	channel       RealtimeChannel
	dispatch      *Dispatcher
	log           *zap.Logger
}

func NewNotifier(users UserLookup, notifications NotificationStore, channel RealtimeChannel, dispatch *Dispatcher, log *zap.Logger) *Notifier {
	return &Notifier{
		users:         users,
		notifications: notifications,
		channel:       channel,
		dispatch:      dispatch,
		log:           log,
	}
}

// NotifyCandidates writes two notifications per (newReport, candidate) pair
// and returns the number of pairs written. A pair with an unresolvable owner
// on either side is skipped.
func (n *Notifier) NotifyCandidates(ctx context.Context, newReport *report.Report, candidates []report.Report) int {
	if len(candidates) == 0 {
		return 0
	}

	owner, err := n.resolveOwner(ctx, newReport.OwnerID)
	if err != nil {
		n.log.Warn("skipping candidate notifications: owner of new report unavailable",
			zap.String("report_id", newReport.ID),
			zap.String("owner_id", newReport.OwnerID),
			zap.Error(err))
		return 0
	}

	owners := map[string]*user.User{owner.ID: owner}
	written := 0
	for i := range candidates {
		c := &candidates[i]
		cOwner, ok := owners[c.OwnerID]
		if !ok {
			cOwner, err = n.resolveOwner(ctx, c.OwnerID)
			if err != nil {
				n.log.Warn("skipping candidate pair: owner unavailable",
					zap.String("report_id", newReport.ID),
					zap.String("candidate_id", c.ID),
					zap.String("owner_id", c.OwnerID),
					zap.Error(err))
				continue
			}
			owners[c.OwnerID] = cOwner
		}

		forNew, forCandidate, err := candidatePair(owner.ID, cOwner.ID, newReport, c)
		if err != nil {
			n.log.Error("skipping candidate pair: build notifications",
				zap.String("report_id", newReport.ID),
				zap.String("candidate_id", c.ID),
				zap.Error(err))
			continue
		}

		if n.save(ctx, forNew) {
			n.push(forNew)
		}
		if n.save(ctx, forCandidate) {
			n.push(forCandidate)
		}
		written++
	}
	return written
}

func (n *Notifier) resolveOwner(ctx context.Context, id string) (*user.User, error) {
	u, err := n.users.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, newError(KindDanglingOwner, "resolve owner", "owner "+id+" does not exist", nil)
	}
	return u, nil
}

func (n *Notifier) save(ctx context.Context, note *notification.Notification) bool {
	if err := n.notifications.Save(ctx, note); err != nil {
		n.log.Error("failed to persist notification",
			zap.String("user_id", note.UserID),
			zap.String("report_id", note.ReportID),
			zap.Error(err))
		return false
	}
	return true
}

func (n *Notifier) push(note *notification.Notification) {
	if n.channel == nil {
		return
	}
	payload, err := notification.NewPushPayload(note)
	if err != nil {
		n.log.Warn("push without notification data", zap.String("notification_id", note.ID), zap.Error(err))
	}
	userID := note.UserID
	n.dispatch.Go("push notification", func() error {
		return n.channel.Push(userID, payload)
	})
}

func candidatePair(newOwnerID, candidateOwnerID string, newReport, candidate *report.Report) (*notification.Notification, *notification.Notification, error) {
	forNew, err := candidateNotification(newOwnerID, newReport, candidate)
	if err != nil {
		return nil, nil, err
	}
	forCandidate, err := candidateNotification(candidateOwnerID, candidate, newReport)
	if err != nil {
		return nil, nil, err
	}
	return forNew, forCandidate, nil
}

// candidateNotification addresses ownerID about their report `own`, which may
// match `other`.
func candidateNotification(ownerID string, own, other *report.Report) (*notification.Notification, error) {
	otherID := other.ID
	note := &notification.Notification{
		UserID:          ownerID,
		Type:            notification.TypeMatch,
		Stage:           notification.StageCandidate,
		Title:           titleCandidate,
		Message:         fmt.Sprintf("A %s item %q may match your %s report for %q.", other.Type, other.Item.DisplayName(), own.Type, own.Item.DisplayName()),
		ReportID:        own.ID,
		MatchedReportID: &otherID,
	}
	if err := note.SetData(&notification.Data{ItemName: other.Item.DisplayName()}); err != nil {
		return nil, err
	}
	return note, nil
}
