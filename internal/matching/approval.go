package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/report"
	"lostfound/internal/domain/user"
)

const emailTimeout = 30 * time.Second

// ApprovalResult is what an admin sees after confirming a match.
type ApprovalResult struct {
	Lost              *report.Report
	Found             *report.Report
	LostNotification  *notification.Notification
	FoundNotification *notification.Notification
}

// Approver confirms a lost/found pair, exchanges contact details and informs
// both owners.
type Approver struct {
	reports       ReportStore
	users         UserLookup
	notifications NotificationStore
	channel       RealtimeChannel
	mail          EmailSender
	dispatch      *Dispatcher
	log           *zap.Logger
}

func NewApprover(reports ReportStore, users UserLookup, notifications NotificationStore, channel RealtimeChannel, mail EmailSender, dispatch *Dispatcher, log *zap.Logger) *Approver {
	return &Approver{
		reports:       reports,
		users:         users,
		notifications: notifications,
		channel:       channel,
		mail:          mail,
		dispatch:      dispatch,
		log:           log,
	}
}

// ApproveMatch marks both reports matched. Every check runs before the first
// write, so a rejected request leaves nothing changed. Approving an already
// matched pair succeeds again and writes a fresh pair of notifications.
func (a *Approver) ApproveMatch(ctx context.Context, lostID, foundID string, admin user.Actor) (*ApprovalResult, error) {
	const op = "approve match"

	if !admin.IsAdmin {
		return nil, newError(KindForbidden, op, "admin privileges required", nil)
	}

	lostID = strings.TrimSpace(lostID)
	foundID = strings.TrimSpace(foundID)
	if lostID == "" || foundID == "" {
		return nil, newError(KindValidationFailed, op, "both lost and found report ids are required", nil)
	}
	if lostID == foundID {
		return nil, newError(KindValidationFailed, op, "a report cannot be matched with itself", nil)
	}

	var lost, found *report.Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lost, err = a.load(gctx, op, lostID)
		return err
	})
	g.Go(func() error {
		var err error
		found, err = a.load(gctx, op, foundID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if lost.Type != report.TypeLost {
		return nil, newError(KindValidationFailed, op, fmt.Sprintf("report %s is not a lost report", lost.ID), nil)
	}
	if found.Type != report.TypeFound {
		return nil, newError(KindValidationFailed, op, fmt.Sprintf("report %s is not a found report", found.ID), nil)
	}
	if strings.TrimSpace(found.ContactInfo) == "" {
		return nil, newError(KindValidationFailed, op, "found report has no contact info", nil)
	}

	lostOwner, err := a.owner(ctx, op, lost)
	if err != nil {
		return nil, err
	}
	foundOwner, err := a.owner(ctx, op, found)
	if err != nil {
		return nil, err
	}

	lostNote, err := approvedNotification(lostOwner.ID, lost, found, notification.Counterpart{
		Name:        foundOwner.Name,
		Email:       foundOwner.Email,
		ContactInfo: found.ContactInfo,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: build lost notification: %w", op, err)
	}
	foundNote, err := approvedNotification(foundOwner.ID, found, lost, notification.Counterpart{
		Name:  lostOwner.Name,
		Email: lostOwner.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: build found notification: %w", op, err)
	}

	if err := a.markMatched(ctx, lost, found); err != nil {
		return nil, err
	}

	res := &ApprovalResult{Lost: lost, Found: found}
	if a.persist(ctx, lostNote) {
		res.LostNotification = lostNote
		a.push(lostNote)
	}
	if a.persist(ctx, foundNote) {
		res.FoundNotification = foundNote
		a.push(foundNote)
	}

	a.email(ctx, lostOwner.Email, lostNote)
	a.email(ctx, foundOwner.Email, foundNote)

	a.log.Info("match approved",
		zap.String("lost_report_id", lost.ID),
		zap.String("found_report_id", found.ID),
		zap.String("admin_id", admin.ID))

	return res, nil
}

func (a *Approver) load(ctx context.Context, op, id string) (*report.Report, error) {
	r, err := a.reports.GetByID(ctx, id)
	if errors.Is(err, report.ErrNotFound) {
		return nil, newError(KindNotFound, op, fmt.Sprintf("report %s not found", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: load report %s: %w", op, id, err)
	}
	return r, nil
}

func (a *Approver) owner(ctx context.Context, op string, r *report.Report) (*user.User, error) {
	u, err := a.users.Resolve(ctx, r.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: resolve owner of %s: %w", op, r.ID, err)
	}
	if u == nil {
		return nil, newError(KindDanglingOwner, op, fmt.Sprintf("owner of %s report %s no longer exists", r.Type, r.ID), nil)
	}
	return u, nil
}

// markMatched saves both reports, restoring the first if the second write fails.
func (a *Approver) markMatched(ctx context.Context, lost, found *report.Report) error {
	prevLost, prevFound := lost.Status, found.Status

	lost.Status = report.StatusMatched
	if err := a.reports.Save(ctx, lost); err != nil {
		lost.Status = prevLost
		return fmt.Errorf("mark lost report matched: %w", err)
	}

	found.Status = report.StatusMatched
	if err := a.reports.Save(ctx, found); err != nil {
		found.Status = prevFound
		lost.Status = prevLost
		if rbErr := a.reports.Save(ctx, lost); rbErr != nil {
			a.log.Error("failed to restore lost report status",
				zap.String("report_id", lost.ID), zap.Error(rbErr))
		}
		return fmt.Errorf("mark found report matched: %w", err)
	}
	return nil
}

func (a *Approver) persist(ctx context.Context, note *notification.Notification) bool {
	if err := a.notifications.Save(ctx, note); err != nil {
		a.log.Error("failed to persist approval notification",
			zap.String("user_id", note.UserID),
			zap.String("report_id", note.ReportID),
			zap.Error(err))
		return false
	}
	return true
}

func (a *Approver) push(note *notification.Notification) {
	if a.channel == nil {
		return
	}
	payload, err := notification.NewPushPayload(note)
	if err != nil {
		a.log.Warn("push without notification data", zap.String("notification_id", note.ID), zap.Error(err))
	}
	userID := note.UserID
	a.dispatch.Go("push approval", func() error {
		return a.channel.Push(userID, payload)
	})
}

func (a *Approver) email(ctx context.Context, to string, note *notification.Notification) {
	if a.mail == nil || to == "" {
		return
	}
	subject := note.Title
	body, err := approvalEmailBody(note)
	if err != nil {
		// an approval email without contact details is useless
		a.log.Error("skipping approval email", zap.String("notification_id", note.ID), zap.Error(err))
		return
	}
	base := context.WithoutCancel(ctx)
	a.dispatch.Go("email approval", func() error {
		sendCtx, cancel := context.WithTimeout(base, emailTimeout)
		defer cancel()
		if err := a.mail.Send(sendCtx, to, subject, body); err != nil {
			return fmt.Errorf("send approval email to %s: %w", to, err)
		}
		return nil
	})
}

func approvedNotification(ownerID string, own, other *report.Report, counterpart notification.Counterpart) (*notification.Notification, error) {
	otherID := other.ID
	var msg string
	if own.Type == report.TypeLost {
		msg = fmt.Sprintf("Your lost item %q has been matched with a found report. Contact %s to arrange the return.", own.Item.DisplayName(), counterpart.Name)
	} else {
		msg = fmt.Sprintf("The item %q you found has been matched with its owner, %s.", own.Item.DisplayName(), counterpart.Name)
	}
	note := &notification.Notification{
		UserID:          ownerID,
		Type:            notification.TypeMatch,
		Stage:           notification.StageApproved,
		Title:           titleApproved,
		Message:         msg,
		ReportID:        own.ID,
		MatchedReportID: &otherID,
	}
	err := note.SetData(&notification.Data{
		Counterpart: &counterpart,
		ItemName:    own.Item.DisplayName(),
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func approvalEmailBody(note *notification.Notification) (string, error) {
	d, err := note.GetData()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(note.Message)
	b.WriteString("\n\n")
	if c := d.Counterpart; c != nil {
		b.WriteString("Contact details\n")
		fmt.Fprintf(&b, "Name: %s\n", c.Name)
		fmt.Fprintf(&b, "Email: %s\n", c.Email)
		if c.ContactInfo != "" {
			fmt.Fprintf(&b, "Contact info: %s\n", c.ContactInfo)
		}
	}
	b.WriteString("\nCampus Lost & Found\n")
	return b.String(), nil
}
