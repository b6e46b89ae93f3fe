package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/report"
	"lostfound/internal/domain/user"
	"lostfound/internal/pkg/testdb"
)

func TestEngine_WithGormRepositories(t *testing.T) {
	db := testdb.Open(t, &user.User{}, &report.Model{}, &notification.Notification{})
	ctx := context.Background()

	users := user.NewRepository(db)
	reports := report.NewRepository(db)
	notes := notification.NewRepository(db)

	alice := &user.User{Name: "Alice", Email: "alice@campus.edu", PasswordHash: "x"}
	bob := &user.User{Name: "Bob", Email: "bob@campus.edu", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	channel := &recordingChannel{}
	engine := NewEngine(Deps{
		Reports:       reports,
		Notifications: notes,
		Users:         users,
		Realtime:      channel,
	}, Options{MinTokenLength: 1}, zaptest.NewLogger(t))
	t.Cleanup(engine.Wait)

	found := &report.Report{
		Type:        report.TypeFound,
		Item:        report.StructuredItem("Wallet", "Leather wallet found near library", ""),
		Location:    "Library",
		ContactInfo: "front desk",
		OwnerID:     bob.ID,
	}
	require.NoError(t, reports.Create(ctx, found))
	engine.OnReportCreated(ctx, found)

	lost := &report.Report{
		Type:     report.TypeLost,
		Item:     report.StructuredItem("black wallet", "leather, has cards", ""),
		Location: "Gym",
		OwnerID:  alice.ID,
	}
	require.NoError(t, reports.Create(ctx, lost))
	engine.OnReportCreated(ctx, lost)
	engine.Wait()

	aliceNotes, total, err := notes.ListByUser(ctx, alice.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, aliceNotes, 1)
	assert.Equal(t, lost.ID, aliceNotes[0].ReportID)
	assert.Equal(t, found.ID, aliceNotes[0].MatchedReport())

	bobNotes, _, err := notes.ListByUser(ctx, bob.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, bobNotes, 1)
	assert.Equal(t, found.ID, bobNotes[0].ReportID)

	res, err := engine.ApproveMatch(ctx, lost.ID, found.ID, user.Actor{ID: "admin", IsAdmin: true})
	require.NoError(t, err)
	engine.Wait()
	assert.Equal(t, report.StatusMatched, res.Lost.Status)

	stored, err := reports.GetByID(ctx, lost.ID)
	require.NoError(t, err)
	assert.Equal(t, report.StatusMatched, stored.Status)

	// matched reports drop out of candidate search
	again, err := engine.Candidates(ctx, lost)
	require.NoError(t, err)
	assert.Empty(t, again)

	counterparts, err := notes.ApprovedCounterparts(ctx, alice.ID, []string{lost.ID})
	require.NoError(t, err)
	require.Contains(t, counterparts, lost.ID)
	assert.Equal(t, "front desk", counterparts[lost.ID].ContactInfo)
	assert.Equal(t, "bob@campus.edu", counterparts[lost.ID].Email)

	assert.Len(t, channel.all(), 4)
}

func TestEngine_LikeWildcardsAreLiteral(t *testing.T) {
	db := testdb.Open(t, &user.User{}, &report.Model{}, &notification.Notification{})
	ctx := context.Background()
	reports := report.NewRepository(db)

	other := &report.Report{
		Type:        report.TypeFound,
		Item:        report.StructuredItem("notebook", "spiral", ""),
		Location:    "Hall",
		ContactInfo: "x",
		OwnerID:     "someone",
	}
	require.NoError(t, reports.Create(ctx, other))

	s := NewSearcher(reports)
	r := &report.Report{ID: "lost-1", Type: report.TypeLost}
	got, err := s.FindCandidates(ctx, r, NewExtractor(1).Extract("%", "_"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEngine_NonASCIIKeywordsMatchAcrossCase(t *testing.T) {
	db := testdb.Open(t, &user.User{}, &report.Model{}, &notification.Notification{})
	ctx := context.Background()

	users := user.NewRepository(db)
	reports := report.NewRepository(db)
	notes := notification.NewRepository(db)

	aigerim := &user.User{Name: "Aigerim", Email: "aigerim@campus.edu", PasswordHash: "x"}
	timur := &user.User{Name: "Timur", Email: "timur@campus.edu", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, aigerim))
	require.NoError(t, users.Create(ctx, timur))

	engine := NewEngine(Deps{
		Reports:       reports,
		Notifications: notes,
		Users:         users,
	}, Options{MinTokenLength: 1}, zaptest.NewLogger(t))
	t.Cleanup(engine.Wait)

	found := &report.Report{
		Type:        report.TypeFound,
		Item:        report.StructuredItem("Ключи", "Связка", ""),
		Location:    "Столовая",
		ContactInfo: "вахта",
		OwnerID:     timur.ID,
	}
	require.NoError(t, reports.Create(ctx, found))

	lost := &report.Report{
		Type:     report.TypeLost,
		Item:     report.StructuredItem("КЛЮЧИ", "потерял", ""),
		Location: "Корпус 2",
		OwnerID:  aigerim.ID,
	}
	require.NoError(t, reports.Create(ctx, lost))

	require.True(t, itemMatches(found.Item, engine.extractor.FromItem(lost.Item)))

	got, err := engine.Candidates(ctx, lost)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, found.ID, got[0].ID)

	back, err := engine.Candidates(ctx, found)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, lost.ID, back[0].ID)

	engine.OnReportCreated(ctx, lost)
	engine.Wait()
	_, total, err := notes.ListByUser(ctx, timur.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
