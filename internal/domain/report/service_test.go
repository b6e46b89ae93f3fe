package report

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/user"
	"lostfound/internal/pkg/testdb"
)

type recordingTrigger struct {
	mu      sync.Mutex
	reports []string
}

func (r *recordingTrigger) OnReportCreated(_ context.Context, rep *Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep.ID)
}

type stubFinder struct {
	out []Report
}

func (s stubFinder) Candidates(context.Context, *Report) ([]Report, error) {
	return s.out, nil
}

type testEnv struct {
	svc     *Service
	repo    *Repository
	notes   *notification.Repository
	trigger *recordingTrigger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testdb.Open(t, &Model{}, &notification.Notification{})
	repo := NewRepository(db)
	notes := notification.NewRepository(db)
	trigger := &recordingTrigger{}
	return &testEnv{
		svc:     NewService(repo, trigger, stubFinder{}, notes, zap.NewNop()),
		repo:    repo,
		notes:   notes,
		trigger: trigger,
	}
}

func lostRequest(name, desc string) CreateReportRequest {
	return CreateReportRequest{Type: TypeLost, ItemName: name, ItemDescription: desc, Location: "Library"}
}

func TestCreate_StoresActiveReportAndTriggersMatching(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rep, err := env.svc.Create(ctx, "owner-1", lostRequest(" Black Wallet ", "leather"), "/uploads/a.jpg")
	require.NoError(t, err)

	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, StatusActive, rep.Status)
	assert.Equal(t, "owner-1", rep.OwnerID)
	assert.Equal(t, Item{Name: "Black Wallet", Description: "leather", ImageURL: "/uploads/a.jpg"}, rep.Item.Normalize())
	assert.Equal(t, []string{rep.ID}, env.trigger.reports)

	stored, err := env.repo.GetByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.Item.Normalize(), stored.Item.Normalize())
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestCreate_FoundRequiresContactInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := CreateReportRequest{Type: TypeFound, ItemName: "Wallet", ItemDescription: "brown", Location: "Gym", ContactInfo: "   "}
	_, err := env.svc.Create(ctx, "owner-1", req, "")
	assert.ErrorIs(t, err, ErrContactInfoRequired)
	assert.True(t, IsValidation(err))

	all, err := env.repo.Find(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, env.trigger.reports)

	req.ContactInfo = "555-0101"
	rep, err := env.svc.Create(ctx, "owner-1", req, "")
	require.NoError(t, err)
	assert.Equal(t, "555-0101", rep.ContactInfo)
}

func TestCreate_RequiredFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, "o", CreateReportRequest{Type: "stolen", ItemName: "x", ItemDescription: "y", Location: "z"}, "")
	assert.ErrorIs(t, err, ErrInvalidType)
	_, err = env.svc.Create(ctx, "o", lostRequest("", "desc"), "")
	assert.ErrorIs(t, err, ErrItemNameRequired)
	_, err = env.svc.Create(ctx, "o", lostRequest("name", ""), "")
	assert.ErrorIs(t, err, ErrItemDescriptionRequired)
	_, err = env.svc.Create(ctx, "", lostRequest("name", "desc"), "")
	assert.ErrorIs(t, err, ErrOwnerRequired)
}

func TestDelete_CascadesNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, "alice", lostRequest("black wallet", "leather"), "")
	require.NoError(t, err)
	b, err := env.svc.Create(ctx, "bob", CreateReportRequest{Type: TypeFound, ItemName: "Wallet", ItemDescription: "leather", Location: "Library", ContactInfo: "desk"}, "")
	require.NoError(t, err)
	c, err := env.svc.Create(ctx, "carol", lostRequest("umbrella", "red"), "")
	require.NoError(t, err)

	bID, aID := b.ID, a.ID
	require.NoError(t, env.notes.Save(ctx, &notification.Notification{UserID: "alice", Title: "t", Message: "m", ReportID: a.ID, MatchedReportID: &bID}))
	require.NoError(t, env.notes.Save(ctx, &notification.Notification{UserID: "bob", Title: "t", Message: "m", ReportID: b.ID, MatchedReportID: &aID}))
	require.NoError(t, env.notes.Save(ctx, &notification.Notification{UserID: "carol", Title: "t", Message: "m", ReportID: c.ID}))

	err = env.svc.Delete(ctx, a.ID, user.Actor{ID: "bob"})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.svc.Delete(ctx, a.ID, user.Actor{ID: "alice"}))

	_, err = env.repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var remaining []notification.Notification
	require.NoError(t, env.notes.DB().Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, c.ID, remaining[0].ReportID)

	// admins can delete any report
	require.NoError(t, env.svc.Delete(ctx, b.ID, user.Actor{ID: "root", IsAdmin: true}))
	assert.ErrorIs(t, env.svc.Delete(ctx, b.ID, user.Actor{ID: "root", IsAdmin: true}), ErrNotFound)
}

func TestGet_Access(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rep, err := env.svc.Create(ctx, "alice", lostRequest("pen", "blue"), "")
	require.NoError(t, err)

	_, err = env.svc.Get(ctx, rep.ID, user.Actor{ID: "alice"})
	assert.NoError(t, err)
	_, err = env.svc.Get(ctx, rep.ID, user.Actor{ID: "admin", IsAdmin: true})
	assert.NoError(t, err)
	_, err = env.svc.Get(ctx, rep.ID, user.Actor{ID: "mallory"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.svc.Get(ctx, "missing", user.Actor{ID: "alice"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_PartialEdit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rep, err := env.svc.Create(ctx, "alice", lostRequest("bottle", "steel"), "")
	require.NoError(t, err)

	updated, err := env.svc.Update(ctx, rep.ID, user.Actor{ID: "alice"}, UpdateReportRequest{Location: "Gym"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Gym", updated.Location)
	assert.Equal(t, "bottle", updated.Item.Normalize().Name)
	assert.Equal(t, StatusActive, updated.Status)

	_, err = env.svc.Update(ctx, rep.ID, user.Actor{ID: "admin", IsAdmin: true}, UpdateReportRequest{Location: "x"}, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdate_UpgradesLegacyItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	legacy := &Report{Type: TypeLost, Item: TextItem("Red Umbrella"), Location: "Hall", OwnerID: "alice"}
	require.NoError(t, env.repo.Create(ctx, legacy))

	stored, err := env.repo.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.True(t, stored.Item.IsLegacy())
	assert.Equal(t, "Red Umbrella", stored.Item.DisplayName())

	updated, err := env.svc.Update(ctx, legacy.ID, user.Actor{ID: "alice"}, UpdateReportRequest{}, "/uploads/u.png")
	require.NoError(t, err)
	assert.False(t, updated.Item.IsLegacy())
	assert.Equal(t, Item{Name: "Red Umbrella", Description: "Red Umbrella", ImageURL: "/uploads/u.png"}, updated.Item.Normalize())

	reloaded, err := env.repo.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Item.IsLegacy())
}

func TestListMine_AttachesApprovedCounterpart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lost, err := env.svc.Create(ctx, "alice", lostRequest("wallet", "black"), "")
	require.NoError(t, err)
	other, err := env.svc.Create(ctx, "alice", lostRequest("keys", "car"), "")
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, "bob", lostRequest("hat", "wool"), "")
	require.NoError(t, err)

	lost.Status = StatusMatched
	require.NoError(t, env.repo.Save(ctx, lost))

	n := &notification.Notification{UserID: "alice", Stage: notification.StageApproved, Title: "Match Approved", Message: "m", ReportID: lost.ID}
	require.NoError(t, n.SetData(&notification.Data{Counterpart: &notification.Counterpart{Name: "Bob", Email: "bob@campus.edu", ContactInfo: "desk"}}))
	require.NoError(t, env.notes.Save(ctx, n))

	list, err := env.svc.ListMine(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[string]*ReportResponse{}
	for _, r := range list {
		byID[r.ID] = r
	}
	require.NotNil(t, byID[lost.ID].MatchedUser)
	assert.Equal(t, "desk", byID[lost.ID].MatchedUser.ContactInfo)
	assert.Nil(t, byID[other.ID].MatchedUser)
}

func TestRepositoryFind_Filters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lost, err := env.svc.Create(ctx, "alice", lostRequest("Black Wallet", "LEATHER"), "")
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, "bob", CreateReportRequest{Type: TypeFound, ItemName: "Umbrella", ItemDescription: "50% off tag", Location: "x", ContactInfo: "y"}, "")
	require.NoError(t, err)
	legacy := &Report{Type: TypeLost, Item: TextItem("old wallet"), Location: "Hall", OwnerID: "carol"}
	require.NoError(t, env.repo.Create(ctx, legacy))

	got, err := env.repo.Find(ctx, Filter{AnyKeyword: []string{"wallet"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = env.repo.Find(ctx, Filter{AnyKeyword: []string{"leather"}, Type: TypeLost})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, lost.ID, got[0].ID)

	got, err = env.repo.Find(ctx, Filter{AnyKeyword: []string{"wallet"}, ExcludeID: lost.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, legacy.ID, got[0].ID)

	got, err = env.repo.Find(ctx, Filter{AnyKeyword: []string{"%"}})
	require.NoError(t, err)
	assert.Len(t, got, 1, "percent sign is matched literally")

	got, err = env.repo.Find(ctx, Filter{Type: TypeFound, Status: StatusMatched})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepositoryFind_FoldsNonASCIICase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	keys, err := env.svc.Create(ctx, "timur", CreateReportRequest{Type: TypeFound, ItemName: "Ключи", ItemDescription: "Связка", Location: "x", ContactInfo: "y"}, "")
	require.NoError(t, err)

	got, err := env.repo.Find(ctx, Filter{AnyKeyword: []string{"ключи"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, keys.ID, got[0].ID)

	got, err = env.repo.Find(ctx, Filter{AnyKeyword: []string{"связка"}})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// an edit refreshes the searchable text
	_, err = env.svc.Update(ctx, keys.ID, user.Actor{ID: "timur"}, UpdateReportRequest{ItemName: "Брелок"}, "")
	require.NoError(t, err)
	got, err = env.repo.Find(ctx, Filter{AnyKeyword: []string{"ключи"}})
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = env.repo.Find(ctx, Filter{AnyKeyword: []string{"брелок"}})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRepository_BackfillSearchText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rep, err := env.svc.Create(ctx, "alice", lostRequest("Scarf", "Wool"), "")
	require.NoError(t, err)
	legacy := &Report{Type: TypeLost, Item: TextItem("Old Ring"), Location: "Hall", OwnerID: "carol"}
	require.NoError(t, env.repo.Create(ctx, legacy))
	require.NoError(t, env.repo.DB().Model(&Model{}).Where("1 = 1").UpdateColumn("search_text", "").Error)

	got, err := env.repo.Find(ctx, Filter{AnyKeyword: []string{"scarf", "ring"}})
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := env.repo.BackfillSearchText(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err = env.repo.Find(ctx, Filter{AnyKeyword: []string{"wool"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rep.ID, got[0].ID)

	got, err = env.repo.Find(ctx, Filter{AnyKeyword: []string{"ring"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, legacy.ID, got[0].ID)

	n, err = env.repo.BackfillSearchText(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListMine_KeepsCardsWhenOneApprovalIsCorrupt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wallet, err := env.svc.Create(ctx, "alice", lostRequest("wallet", "black"), "")
	require.NoError(t, err)
	keys, err := env.svc.Create(ctx, "alice", lostRequest("keys", "car"), "")
	require.NoError(t, err)
	for _, rep := range []*Report{wallet, keys} {
		rep.Status = StatusMatched
		require.NoError(t, env.repo.Save(ctx, rep))
	}

	good := &notification.Notification{UserID: "alice", Stage: notification.StageApproved, Title: "Match Approved", Message: "m", ReportID: wallet.ID}
	require.NoError(t, good.SetData(&notification.Data{Counterpart: &notification.Counterpart{Name: "Bob", Email: "bob@campus.edu"}}))
	require.NoError(t, env.notes.Save(ctx, good))
	bad := &notification.Notification{UserID: "alice", Stage: notification.StageApproved, Title: "Match Approved", Message: "m", ReportID: keys.ID, Data: datatypes.JSON(`{"counterpart":`)}
	require.NoError(t, env.notes.Save(ctx, bad))

	list, err := env.svc.ListMine(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[string]*ReportResponse{}
	for _, r := range list {
		byID[r.ID] = r
	}
	require.NotNil(t, byID[wallet.ID].MatchedUser)
	assert.Equal(t, "Bob", byID[wallet.ID].MatchedUser.Name)
	assert.Nil(t, byID[keys.ID].MatchedUser)
}
