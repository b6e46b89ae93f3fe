package matching

import (
	"context"

	"go.uber.org/zap"

	"lostfound/internal/domain/report"
	"lostfound/internal/domain/user"
)

type Deps struct {
	Reports       ReportStore
	Notifications NotificationStore
	Users         UserLookup
	Realtime      RealtimeChannel
	Mail          EmailSender
}

type Options struct {
	MinTokenLength int
}

// Engine ties keyword extraction, candidate search, notification and admin
// approval together.
type Engine struct {
	extractor Extractor
	reports   ReportStore
	searcher  *Searcher
	notifier  *Notifier
	approver  *Approver
	dispatch  *Dispatcher
	log       *zap.Logger
}

func NewEngine(deps Deps, opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("matching")
	dispatch := NewDispatcher(log)
	return &Engine{
		extractor: NewExtractor(opts.MinTokenLength),
		reports:   deps.Reports,
		searcher:  NewSearcher(deps.Reports),
		notifier:  NewNotifier(deps.Users, deps.Notifications, deps.Realtime, dispatch, log),
		approver:  NewApprover(deps.Reports, deps.Users, deps.Notifications, deps.Realtime, deps.Mail, dispatch, log),
		dispatch:  dispatch,
		log:       log,
	}
}

// OnReportCreated runs the matching pipeline for a freshly stored report.
// It never fails the caller: errors are logged and the report stays stored.
func (e *Engine) OnReportCreated(ctx context.Context, r *report.Report) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("matching panicked", zap.String("report_id", r.ID), zap.Any("panic", rec))
		}
	}()
	e.match(ctx, r)
}

func (e *Engine) match(ctx context.Context, r *report.Report) int {
	kw := e.extractor.FromItem(r.Item)
	if len(kw) == 0 {
		e.log.Debug("no keywords, skipping match", zap.String("report_id", r.ID))
		return 0
	}

	candidates, err := e.searcher.FindCandidates(ctx, r, kw)
	if err != nil {
		e.log.Warn("candidate search failed",
			zap.String("report_id", r.ID),
			zap.Stringer("kind", KindOf(err)),
			zap.Error(err))
		return 0
	}
	if len(candidates) == 0 {
		return 0
	}

	pairs := e.notifier.NotifyCandidates(ctx, r, candidates)
	e.log.Info("candidate matches notified",
		zap.String("report_id", r.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("pairs", pairs))
	return pairs
}

// Candidates lists the current candidates for r without notifying anyone.
func (e *Engine) Candidates(ctx context.Context, r *report.Report) ([]report.Report, error) {
	return e.searcher.FindCandidates(ctx, r, e.extractor.FromItem(r.Item))
}

func (e *Engine) ApproveMatch(ctx context.Context, lostID, foundID string, admin user.Actor) (*ApprovalResult, error) {
	return e.approver.ApproveMatch(ctx, lostID, foundID, admin)
}

// Rescan re-runs matching for every active report of type t and returns the
// number of notification pairs written. Pairs already notified are notified
// again.
func (e *Engine) Rescan(ctx context.Context, t report.Type) (int, error) {
	active, err := e.reports.Find(ctx, report.Filter{Type: t, Status: report.StatusActive})
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range active {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		total += e.match(ctx, &active[i])
	}
	return total, nil
}

// Wait blocks until every detached push and email has finished.
func (e *Engine) Wait() {
	e.dispatch.Wait()
}
