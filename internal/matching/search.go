package matching

import (
	"context"

	"lostfound/internal/domain/report"
)

// Searcher finds candidate counterparts for a report.
type Searcher struct {
	store ReportStore
}

func NewSearcher(store ReportStore) *Searcher {
	return &Searcher{store: store}
}

// FindCandidates returns every active report of the opposite type, other than
// r itself, whose item name or description contains at least one keyword.
// There is no ranking and no limit. An empty keyword set yields no search.
func (s *Searcher) FindCandidates(ctx context.Context, r *report.Report, kw KeywordSet) ([]report.Report, error) {
	if len(kw) == 0 {
		return nil, nil
	}

	target := r.Type.Opposite()
	found, err := s.store.Find(ctx, report.Filter{
		Type:       target,
		Status:     report.StatusActive,
		ExcludeID:  r.ID,
		AnyKeyword: kw.Slice(),
	})
	if err != nil {
		return nil, newError(KindSearchFailed, "find candidates", "report store query failed", err)
	}

	// the store's filter is a prefilter; the predicate is decided here
	out := found[:0]
	for _, c := range found {
		if c.Type != target || c.Status != report.StatusActive || c.ID == r.ID {
			continue
		}
		if itemMatches(c.Item, kw) {
			out = append(out, c)
		}
	}
	return out, nil
}
