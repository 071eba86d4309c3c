package actors

import (
	"fmt"
	"testing"
	"time"

	stdctx "context"

	"hazard-watch/internal/ledger"
	"hazard-watch/internal/models"
	"hazard-watch/internal/store"
	"hazard-watch/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

type actorFixture struct {
	system *actor.ActorSystem
	store  *store.MemoryStore
	pid    *actor.PID
}

func newReportFixture(t *testing.T) *actorFixture {
	t.Helper()
	system := actor.NewActorSystem()
	docStore := store.NewMemoryStore()
	metrics := utils.NewMetricsCollector()
	votes := ledger.NewVoteLedger(docStore)

	pid := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewReportActor(docStore, votes, metrics)
	}))
	t.Cleanup(func() { system.Root.Stop(pid) })

	return &actorFixture{system: system, store: docStore, pid: pid}
}

func (f *actorFixture) ask(t *testing.T, msg interface{}) interface{} {
	t.Helper()
	future := f.system.Root.RequestFuture(f.pid, msg, testTimeout)
	result, err := future.Result()
	require.NoError(t, err)
	return result
}

func (f *actorFixture) seedProfile(t *testing.T, email, displayName string) {
	t.Helper()
	user := &models.User{Email: email, DisplayName: displayName, CreatedAt: time.Now()}
	path := store.Path(store.CollectionUsers, ledger.SanitizeKey(email))
	require.NoError(t, f.store.Set(stdctx.Background(), path, user.Doc()))
}

func TestReportActorCreateAndGet(t *testing.T) {
	f := newReportFixture(t)
	f.seedProfile(t, "alice@example.com", "Alice")

	result := f.ask(t, &CreateReportMsg{
		Title:       "Open manhole on 5th street",
		Description: "Cover missing since last night",
		HazardType:  "manhole",
		Latitude:    29.6516,
		Longitude:   -82.3248,
		AuthorEmail: "alice@example.com",
	})
	report, ok := result.(*models.Report)
	require.True(t, ok, "expected *models.Report, got %T", result)
	assert.Equal(t, "Open manhole on 5th street", report.Title)
	assert.Equal(t, "alice@example.com", report.AuthorEmail)
	assert.Empty(t, report.Voters)

	result = f.ask(t, &GetReportMsg{ReportID: report.ID})
	fetched, ok := result.(*models.Report)
	require.True(t, ok, "expected *models.Report, got %T", result)
	assert.Equal(t, report.ID, fetched.ID)
	assert.Equal(t, "manhole", fetched.HazardType)
	assert.InDelta(t, 29.6516, fetched.Latitude, 0.0001)
}

func TestReportActorCreateRequiresProfile(t *testing.T) {
	f := newReportFixture(t)

	result := f.ask(t, &CreateReportMsg{
		Title:       "Flooded underpass",
		HazardType:  "flood",
		AuthorEmail: "ghost@example.com",
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %T", result)
	assert.Equal(t, utils.ErrUserProfileMissing, appErr.Code)
}

func TestReportActorCreateRequiresTitle(t *testing.T) {
	f := newReportFixture(t)
	f.seedProfile(t, "alice@example.com", "Alice")

	result := f.ask(t, &CreateReportMsg{
		Title:       "   ",
		HazardType:  "flood",
		AuthorEmail: "alice@example.com",
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %T", result)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestReportActorGetUnknownReport(t *testing.T) {
	f := newReportFixture(t)

	result := f.ask(t, &GetReportMsg{ReportID: uuid.New()})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %T", result)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestReportActorVoteRoundTrip(t *testing.T) {
	f := newReportFixture(t)
	f.seedProfile(t, "alice@example.com", "Alice")
	f.seedProfile(t, "bob@example.com", "Bob")

	created := f.ask(t, &CreateReportMsg{
		Title:       "Broken streetlight",
		HazardType:  "lighting",
		AuthorEmail: "alice@example.com",
	})
	report := created.(*models.Report)

	result := f.ask(t, &CastVoteMsg{
		ReportID:  report.ID,
		UserEmail: "bob@example.com",
		VoteType:  models.VoteUp,
	})
	agg, ok := result.(*models.VoteAggregate)
	require.True(t, ok, "expected *models.VoteAggregate, got %T", result)
	assert.Equal(t, 1, agg.Upvotes)

	// Toggle: the same vote again retracts.
	result = f.ask(t, &CastVoteMsg{
		ReportID:  report.ID,
		UserEmail: "bob@example.com",
		VoteType:  models.VoteUp,
	})
	agg, ok = result.(*models.VoteAggregate)
	require.True(t, ok, "expected *models.VoteAggregate, got %T", result)
	assert.Equal(t, 0, agg.Upvotes)
	assert.Empty(t, agg.Voters)
}

func TestReportActorVoteOnUnknownReport(t *testing.T) {
	f := newReportFixture(t)
	f.seedProfile(t, "alice@example.com", "Alice")

	result := f.ask(t, &CastVoteMsg{
		ReportID:  uuid.New(),
		UserEmail: "alice@example.com",
		VoteType:  models.VoteDown,
	})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %T", result)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestReportActorRecentReports(t *testing.T) {
	f := newReportFixture(t)
	f.seedProfile(t, "alice@example.com", "Alice")

	for i := 0; i < 5; i++ {
		report := &models.Report{
			ID:         uuid.New(),
			Title:      fmt.Sprintf("Report %d", i),
			HazardType: "debris",
			CreatedAt:  time.Now().Add(time.Duration(i) * time.Minute),
			Voters:     make(map[string]models.VoteRecord),
		}
		path := store.Path(store.CollectionPosts, report.ID.String())
		require.NoError(t, f.store.Set(stdctx.Background(), path, report.Doc()))
	}

	result := f.ask(t, &GetRecentReportsMsg{Limit: 3})
	reports, ok := result.([]*models.Report)
	require.True(t, ok, "expected []*models.Report, got %T", result)
	require.Len(t, reports, 3)
	assert.Equal(t, "Report 4", reports[0].Title, "newest first")
	assert.True(t, reports[0].CreatedAt.After(reports[1].CreatedAt))
	assert.True(t, reports[1].CreatedAt.After(reports[2].CreatedAt))
}

func TestReportActorCounts(t *testing.T) {
	f := newReportFixture(t)
	f.seedProfile(t, "alice@example.com", "Alice")

	result := f.ask(t, &GetCountsMsg{})
	assert.Equal(t, 0, result)

	f.ask(t, &CreateReportMsg{
		Title:       "Loose gravel",
		HazardType:  "debris",
		AuthorEmail: "alice@example.com",
	})

	result = f.ask(t, &GetCountsMsg{})
	assert.Equal(t, 1, result)
}
