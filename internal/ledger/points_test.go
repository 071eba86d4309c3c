package ledger

import (
	"context"
	"testing"

	"hazard-watch/internal/models"
	"hazard-watch/internal/store"
	"hazard-watch/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validDetails = models.RedemptionDetails{
	FullName:    "Alice Gator",
	PhoneNumber: "+1-352-555-0100",
	Address:     "12 Swamp Road, Gainesville FL",
}

func seedReward(t *testing.T, s store.Store, cost int) string {
	t.Helper()
	reward := &models.Reward{
		ID:             uuid.New(),
		Name:           "Reflective vest",
		PointsRequired: cost,
		Active:         true,
	}
	path := store.Path(store.CollectionRewards, reward.ID.String())
	require.NoError(t, s.Set(context.Background(), path, reward.Doc()))
	return reward.ID.String()
}

func recordScores(t *testing.T, p *PointsAccountor, email string, scores ...int) {
	t.Helper()
	for _, score := range scores {
		_, err := p.RecordScore(context.Background(), email, score)
		require.NoError(t, err)
	}
}

func TestBalanceEmptyHistory(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")

	balance, err := points.Balance(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestBalanceSumsHistory(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")
	recordScores(t, points, "alice@example.com", 3, 5)

	balance, err := points.Balance(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 8, balance)
}

func TestBalanceMissingProfile(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)

	_, err := points.Balance(context.Background(), "ghost@example.com")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUserProfileMissing))
}

func TestRecordScoreRejectsNegative(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")

	_, err := points.RecordScore(context.Background(), "alice@example.com", -1)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
}

func TestRecordScoreRefreshesCachedPoints(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")
	ctx := context.Background()

	balance, err := points.RecordScore(ctx, "alice@example.com", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, balance)

	doc, err := s.Get(ctx, store.Path(store.CollectionUsers, SanitizeKey("alice@example.com")))
	require.NoError(t, err)
	user := models.UserFromDoc(doc)
	assert.Equal(t, 7, user.Points)
	require.Len(t, user.Scores, 1)
	assert.Equal(t, 7, user.Scores[0].Score)
	// The display fields must survive the partial write.
	assert.Equal(t, "Alice", user.DisplayName)
}

func TestRedeemExactBalanceSucceeds(t *testing.T) {
	// The affordability check is inclusive: balance == cost redeems.
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")
	recordScores(t, points, "alice@example.com", 3, 5)
	rewardID := seedReward(t, s, 8)
	ctx := context.Background()

	record, err := points.Redeem(ctx, "alice@example.com", rewardID, validDetails)
	require.NoError(t, err)

	assert.Equal(t, models.RedemptionPending, record.Status)
	assert.Equal(t, rewardID, record.RewardID)
	assert.Equal(t, 8, record.PointsCost)
	assert.Equal(t, "Alice Gator", record.FullName)
	assert.NotZero(t, record.Timestamp)

	balance, err := points.Balance(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestRedeemOnePointShortFails(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")
	recordScores(t, points, "alice@example.com", 9)
	rewardID := seedReward(t, s, 10)
	ctx := context.Background()

	_, err := points.Redeem(ctx, "alice@example.com", rewardID, validDetails)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInsufficientPoints))
	assert.Contains(t, err.Error(), "Required: 10")
	assert.Contains(t, err.Error(), "Actual: 9")

	// Nothing debited, no claim written.
	balance, err := points.Balance(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 9, balance)

	_, err = points.RedemptionStatus(ctx, "alice@example.com")
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestRedeemZeroCostReward(t *testing.T) {
	// A reward with no configured cost is always affordable, even on an
	// empty history.
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")
	rewardID := seedReward(t, s, 0)

	record, err := points.Redeem(context.Background(), "alice@example.com", rewardID, validDetails)
	require.NoError(t, err)
	assert.Equal(t, 0, record.PointsCost)
	assert.Equal(t, models.RedemptionPending, record.Status)
}

func TestRedeemUnknownReward(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")

	_, err := points.Redeem(context.Background(), "alice@example.com", uuid.New().String(), validDetails)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrRewardNotFound))
}

func TestRedeemMalformedRewardID(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")

	_, err := points.Redeem(context.Background(), "alice@example.com", "not-a-uuid", validDetails)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
}

func TestRedeemMissingDetails(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")
	rewardID := seedReward(t, s, 0)

	details := models.RedemptionDetails{FullName: "Alice Gator"}
	_, err := points.Redeem(context.Background(), "alice@example.com", rewardID, details)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
	assert.Contains(t, err.Error(), "phoneNumber")
	assert.Contains(t, err.Error(), "address")
}

func TestRedeemMissingProfile(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	rewardID := seedReward(t, s, 0)

	_, err := points.Redeem(context.Background(), "ghost@example.com", rewardID, validDetails)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUserProfileMissing))
}

func TestRedeemDebitsAcrossRedemptions(t *testing.T) {
	// Earn 10, redeem 4 twice: the second redemption sees the balance
	// net of the first, and the third attempt fails.
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")
	recordScores(t, points, "alice@example.com", 10)
	rewardID := seedReward(t, s, 4)
	ctx := context.Background()

	_, err := points.Redeem(ctx, "alice@example.com", rewardID, validDetails)
	require.NoError(t, err)
	_, err = points.Redeem(ctx, "alice@example.com", rewardID, validDetails)
	require.NoError(t, err)

	balance, err := points.Balance(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, balance)

	_, err = points.Redeem(ctx, "alice@example.com", rewardID, validDetails)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInsufficientPoints))
}

func TestRedeemSingleClaimSlot(t *testing.T) {
	// claim_reward holds one record per user: a second redemption
	// overwrites the first.
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")
	recordScores(t, points, "alice@example.com", 20)
	firstReward := seedReward(t, s, 5)
	secondReward := seedReward(t, s, 5)
	ctx := context.Background()

	_, err := points.Redeem(ctx, "alice@example.com", firstReward, validDetails)
	require.NoError(t, err)
	_, err = points.Redeem(ctx, "alice@example.com", secondReward, validDetails)
	require.NoError(t, err)

	record, err := points.RedemptionStatus(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, secondReward, record.RewardID)
}

func TestRedemptionStatusNotFound(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")

	_, err := points.RedemptionStatus(context.Background(), "alice@example.com")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestUpdateRedemptionStatusTransitions(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")
	rewardID := seedReward(t, s, 0)
	ctx := context.Background()

	_, err := points.Redeem(ctx, "alice@example.com", rewardID, validDetails)
	require.NoError(t, err)

	record, err := points.UpdateRedemptionStatus(ctx, "alice@example.com", models.RedemptionFulfilled)
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionFulfilled, record.Status)

	// Fulfilled is terminal.
	_, err = points.UpdateRedemptionStatus(ctx, "alice@example.com", models.RedemptionRejected)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
}

func TestUpdateRedemptionStatusRejectsPending(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	seedProfile(t, s, "alice@example.com", "Alice")
	rewardID := seedReward(t, s, 0)
	ctx := context.Background()

	_, err := points.Redeem(ctx, "alice@example.com", rewardID, validDetails)
	require.NoError(t, err)

	// Setting a claim back to pending is not a valid transition.
	_, err = points.UpdateRedemptionStatus(ctx, "alice@example.com", models.RedemptionPending)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
}

func TestSaveAndListRewards(t *testing.T) {
	s := store.NewMemoryStore()
	points := NewPointsAccountor(s)
	ctx := context.Background()

	reward := &models.Reward{
		ID:             uuid.New(),
		Name:           "Bike helmet",
		Description:    "Certified road helmet",
		PointsRequired: 50,
		Active:         true,
	}
	require.NoError(t, points.SaveReward(ctx, reward))

	err := points.SaveReward(ctx, &models.Reward{ID: uuid.New()})
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput), "nameless reward should be rejected")

	rewards, err := points.ListRewards(ctx)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.Equal(t, "Bike helmet", rewards[0].Name)
	assert.Equal(t, 50, rewards[0].PointsRequired)
	assert.True(t, rewards[0].Active)
}
