package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/report"
)

type engineFixture struct {
	engine        *Engine
	reports       *memReports
	notifications *memNotifications
	channel       *recordingChannel
	mail          *mockMailer
}

func newEngineFixture(t *testing.T, reports ...report.Report) *engineFixture {
	t.Helper()
	f := &engineFixture{
		reports:       newMemReports(reports...),
		notifications: &memNotifications{},
		channel:       &recordingChannel{},
		mail:          &mockMailer{},
	}
	f.engine = NewEngine(Deps{
		Reports:       f.reports,
		Notifications: f.notifications,
		Users:         testUsers(),
		Realtime:      f.channel,
		Mail:          f.mail,
	}, Options{MinTokenLength: 1}, zap.NewNop())
	t.Cleanup(f.engine.Wait)
	return f
}

func TestOnReportCreated_WalletScenario(t *testing.T) {
	a := lostReport("A", "alice", "black wallet", "leather, has cards")
	b := foundReport("B", "bob", "Wallet", "Leather wallet found near library", "555-0101")
	f := newEngineFixture(t, a, b)
	ctx := context.Background()

	candidatesOfA, err := f.engine.Candidates(ctx, &a)
	require.NoError(t, err)
	require.Len(t, candidatesOfA, 1)
	assert.Equal(t, "B", candidatesOfA[0].ID)

	candidatesOfB, err := f.engine.Candidates(ctx, &b)
	require.NoError(t, err)
	require.Len(t, candidatesOfB, 1)
	assert.Equal(t, "A", candidatesOfB[0].ID)

	f.engine.OnReportCreated(ctx, &a)
	f.engine.Wait()

	saved := f.notifications.all()
	require.Len(t, saved, 2)

	assert.Equal(t, "alice", saved[0].UserID)
	assert.Equal(t, "A", saved[0].ReportID)
	assert.Equal(t, "B", saved[0].MatchedReport())
	assert.Equal(t, notification.StageCandidate, saved[0].Stage)
	assert.Equal(t, "Potential Match Found!", saved[0].Title)

	assert.Equal(t, "bob", saved[1].UserID)
	assert.Equal(t, "B", saved[1].ReportID)
	assert.Equal(t, "A", saved[1].MatchedReport())

	pushes := f.channel.all()
	assert.Len(t, pushes, 2)
	assert.ElementsMatch(t, []string{"alice", "bob"}, []string{pushes[0].UserID, pushes[1].UserID})

	// candidate signals never change status
	assert.Equal(t, report.StatusActive, f.reports.status("A"))
	assert.Equal(t, report.StatusActive, f.reports.status("B"))
	f.mail.AssertNotCalled(t, "Send")
}

func TestOnReportCreated_EmptyItemSkipsSearch(t *testing.T) {
	r := lostReport("A", "alice", "", "")
	f := newEngineFixture(t, r, foundReport("B", "bob", "anything", "at all", "x"))

	f.engine.OnReportCreated(context.Background(), &r)
	f.engine.Wait()

	assert.Equal(t, 0, f.reports.finds)
	assert.Empty(t, f.notifications.all())
}

func TestOnReportCreated_SameTypeNeverMatches(t *testing.T) {
	a := lostReport("A", "alice", "blue umbrella", "folding")
	b := lostReport("B", "bob", "blue umbrella", "folding")
	f := newEngineFixture(t, a, b)

	got, err := f.engine.Candidates(context.Background(), &a)
	require.NoError(t, err)
	assert.Empty(t, got)

	f.engine.OnReportCreated(context.Background(), &a)
	f.engine.Wait()
	assert.Empty(t, f.notifications.all())
}

func TestOnReportCreated_IgnoresInactiveCandidates(t *testing.T) {
	a := lostReport("A", "alice", "keys", "car keys")
	matched := foundReport("B", "bob", "keys", "found keys", "x")
	matched.Status = report.StatusMatched
	f := newEngineFixture(t, a, matched)

	got, err := f.engine.Candidates(context.Background(), &a)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOnReportCreated_MultipleCandidates(t *testing.T) {
	a := lostReport("A", "alice", "laptop", "silver macbook")
	b := foundReport("B", "bob", "Laptop", "grey", "x")
	c := foundReport("C", "carol", "charger", "macbook charger", "y")
	d := foundReport("D", "bob", "scarf", "wool", "z")
	f := newEngineFixture(t, a, b, c, d)

	f.engine.OnReportCreated(context.Background(), &a)
	f.engine.Wait()

	saved := f.notifications.all()
	require.Len(t, saved, 4)
	pairs := map[string]string{}
	for _, n := range saved {
		pairs[n.ReportID+">"+n.MatchedReport()] = n.UserID
	}
	assert.Equal(t, map[string]string{
		"A>B": "alice",
		"B>A": "bob",
		"A>C": "alice",
		"C>A": "carol",
	}, pairs)
}

func TestOnReportCreated_SkipsDanglingOwner(t *testing.T) {
	a := lostReport("A", "alice", "phone", "black iphone")
	ghost := foundReport("B", "ghost", "phone", "cracked screen", "x")
	live := foundReport("C", "bob", "phone", "samsung", "y")
	f := newEngineFixture(t, a, ghost, live)

	f.engine.OnReportCreated(context.Background(), &a)
	f.engine.Wait()

	saved := f.notifications.all()
	require.Len(t, saved, 2)
	for _, n := range saved {
		assert.NotEqual(t, "B", n.ReportID)
		assert.NotEqual(t, "B", n.MatchedReport())
	}
}

func TestOnReportCreated_NewReportOwnerMissing(t *testing.T) {
	a := lostReport("A", "ghost", "phone", "black")
	f := newEngineFixture(t, a, foundReport("B", "bob", "phone", "x", "y"))

	f.engine.OnReportCreated(context.Background(), &a)
	f.engine.Wait()
	assert.Empty(t, f.notifications.all())
}

func TestOnReportCreated_SearchFailureIsSwallowed(t *testing.T) {
	a := lostReport("A", "alice", "bag", "red")
	f := newEngineFixture(t, a)
	f.reports.findErr = errors.New("db down")

	assert.NotPanics(t, func() {
		f.engine.OnReportCreated(context.Background(), &a)
	})
	assert.Empty(t, f.notifications.all())

	_, err := f.engine.Candidates(context.Background(), &a)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchFailed)
	assert.Equal(t, KindSearchFailed, KindOf(err))
}

func TestOnReportCreated_PushFailureDoesNotAffectPersistence(t *testing.T) {
	a := lostReport("A", "alice", "watch", "gold")
	b := foundReport("B", "bob", "watch", "silver", "x")
	f := newEngineFixture(t, a, b)
	f.channel.err = errors.New("offline")

	f.engine.OnReportCreated(context.Background(), &a)
	f.engine.Wait()

	assert.Len(t, f.notifications.all(), 2)
	assert.Len(t, f.channel.all(), 2)
}

func TestOnReportCreated_MinTokenLength(t *testing.T) {
	a := lostReport("A", "alice", "a pen", "")
	b := foundReport("B", "bob", "a hat", "", "x")

	loose := newEngineFixture(t, a, b)
	loose.engine.OnReportCreated(context.Background(), &a)
	loose.engine.Wait()
	assert.Len(t, loose.notifications.all(), 2, "single-letter token matches with default length")

	strict := &engineFixture{
		reports:       newMemReports(a, b),
		notifications: &memNotifications{},
	}
	strict.engine = NewEngine(Deps{
		Reports:       strict.reports,
		Notifications: strict.notifications,
		Users:         testUsers(),
	}, Options{MinTokenLength: 2}, nil)
	strict.engine.OnReportCreated(context.Background(), &a)
	strict.engine.Wait()
	assert.Empty(t, strict.notifications.all())
}

func TestRescan(t *testing.T) {
	a := lostReport("A", "alice", "bike", "blue")
	b := foundReport("B", "bob", "bike", "red", "x")
	c := lostReport("C", "carol", "scarf", "green")
	f := newEngineFixture(t, a, b, c)

	pairs, err := f.engine.Rescan(context.Background(), report.TypeLost)
	require.NoError(t, err)
	f.engine.Wait()

	assert.Equal(t, 1, pairs)
	assert.Len(t, f.notifications.all(), 2)
}
