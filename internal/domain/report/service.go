package report

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/user"
)

// MatchTrigger runs the matching pass for a freshly stored report. It must
// not fail report creation, so it has no error result.
type MatchTrigger interface {
	OnReportCreated(ctx context.Context, r *Report)
}

// CandidateFinder lists likely counterparts for a report on demand.
type CandidateFinder interface {
	Candidates(ctx context.Context, r *Report) ([]Report, error)
}

// CounterpartSource returns approved-match contact cards keyed by report id.
type CounterpartSource interface {
	ApprovedCounterparts(ctx context.Context, userID string, reportIDs []string) (map[string]*notification.Counterpart, error)
}

type Service struct {
	repo         *Repository
	trigger      MatchTrigger
	finder       CandidateFinder
	counterparts CounterpartSource
	log          *zap.Logger
}

func NewService(repo *Repository, trigger MatchTrigger, finder CandidateFinder, counterparts CounterpartSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:         repo,
		trigger:      trigger,
		finder:       finder,
		counterparts: counterparts,
		log:          log,
	}
}

// Create stores a new active report and runs the matching pass for it.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateReportRequest, imageURL string) (*Report, error) {
	rep := &Report{
		Type:     req.Type,
		Item:     StructuredItem(req.ItemName, req.ItemDescription, imageURL),
		Location: strings.TrimSpace(req.Location),
		Status:   StatusActive,
		OwnerID:  ownerID,
	}
	// lost reports keep contact info only when the owner chose to give it
	rep.ContactInfo = strings.TrimSpace(req.ContactInfo)

	if err := rep.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, err
	}

	s.log.Info("report created",
		zap.String("report_id", rep.ID),
		zap.String("type", string(rep.Type)),
		zap.String("owner_id", ownerID))

	if s.trigger != nil {
		s.trigger.OnReportCreated(ctx, rep)
	}
	return rep, nil
}

// Get returns a report visible to the actor: its owner or an admin.
func (s *Service) Get(ctx context.Context, id string, actor user.Actor) (*Report, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(rep, actor) {
		return nil, ErrForbidden
	}
	return rep, nil
}

// ListMine returns the owner's reports, newest first. Matched reports carry
// the counterpart's contact card from the approval.
func (s *Service) ListMine(ctx context.Context, ownerID string) ([]*ReportResponse, error) {
	list, err := s.repo.Find(ctx, Filter{OwnerID: ownerID, Newest: true})
	if err != nil {
		return nil, err
	}

	out := ReportResponsesFromEntities(list)
	if s.counterparts == nil {
		return out, nil
	}

	var matchedIDs []string
	for i := range list {
		if list[i].Status == StatusMatched {
			matchedIDs = append(matchedIDs, list[i].ID)
		}
	}
	if len(matchedIDs) == 0 {
		return out, nil
	}

	cards, err := s.counterparts.ApprovedCounterparts(ctx, ownerID, matchedIDs)
	if err != nil {
		// the listing is still useful with whatever cards did load
		s.log.Warn("load matched counterparts", zap.String("owner_id", ownerID), zap.Error(err))
	}
	for _, r := range out {
		if cp, ok := cards[r.ID]; ok {
			r.MatchedUser = cp
		}
	}
	return out, nil
}

// ListAll is the admin view over every report.
func (s *Service) ListAll(ctx context.Context, f Filter) ([]Report, error) {
	f.Newest = true
	return s.repo.Find(ctx, f)
}

// Update applies a partial edit by the owner. The type, status and owner never
// change here; a found report keeps its contact info when none is given.
func (s *Service) Update(ctx context.Context, id string, actor user.Actor, req UpdateReportRequest, imageURL string) (*Report, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.OwnerID != actor.ID {
		return nil, ErrForbidden
	}

	item := rep.Item.Normalize()
	name := firstNonBlank(req.ItemName, item.Name)
	desc := firstNonBlank(req.ItemDescription, item.Description)
	if rep.Item.IsLegacy() && desc == "" {
		// legacy items only had a single text; it doubles as the description
		desc = item.Name
	}
	img := firstNonBlank(imageURL, item.ImageURL)
	rep.Item = StructuredItem(name, desc, img)
	rep.Location = firstNonBlank(req.Location, rep.Location)
	rep.ContactInfo = firstNonBlank(req.ContactInfo, rep.ContactInfo)

	if err := rep.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// Delete removes a report (owner or admin) together with the notifications
// that reference it.
func (s *Service) Delete(ctx context.Context, id string, actor user.Actor) error {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canAccess(rep, actor) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("report deleted",
		zap.String("report_id", id),
		zap.String("by", actor.ID),
		zap.Bool("admin", actor.IsAdmin))
	return nil
}

// Matches runs a candidate search for one of the actor's reports.
func (s *Service) Matches(ctx context.Context, id string, actor user.Actor) ([]Report, error) {
	rep, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if s.finder == nil {
		return nil, errors.New("candidate search is not configured")
	}
	return s.finder.Candidates(ctx, rep)
}

func canAccess(rep *Report, actor user.Actor) bool {
	return actor.IsAdmin || rep.OwnerID == actor.ID
}

func firstNonBlank(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}
