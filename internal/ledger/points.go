package ledger

import (
	"context"
	"strings"
	"time"

	"hazard-watch/internal/models"
	"hazard-watch/internal/store"
	"hazard-watch/internal/utils"

	"github.com/google/uuid"
)

// PointsAccountor derives a user's spendable balance from their score
// history and applies redemption debits.
//
// The cached points field on the profile is a materialized view: it is
// recomputed from the score history and the redeemed total on every
// score event and every redemption, never mutated independently. The
// recomputation and the claim record are still two separate writes with
// no transaction around them; a crash between them can leave a pending
// claim without its debit, the same read-modify-write exposure the vote
// ledger documents.
type PointsAccountor struct {
	store store.Store
	locks *keyedMutex
}

func NewPointsAccountor(s store.Store) *PointsAccountor {
	return &PointsAccountor{
		store: s,
		locks: newKeyedMutex(),
	}
}

// Balance returns the spendable balance: the sum over the full score
// history minus everything redeemed so far. An empty history is 0.
func (p *PointsAccountor) Balance(ctx context.Context, userEmail string) (int, error) {
	user, _, err := p.fetchProfile(ctx, userEmail)
	if err != nil {
		return 0, err
	}
	return user.ScoreSum() - user.Redeemed, nil
}

// RecordScore appends one score event (e.g. a minigame result) to the
// user's history and refreshes the cached balance. Returns the new
// balance.
func (p *PointsAccountor) RecordScore(ctx context.Context, userEmail string, score int) (int, error) {
	if score < 0 {
		return 0, utils.NewAppError(utils.ErrInvalidInput, "score must be non-negative", nil)
	}

	userKey := SanitizeKey(userEmail)
	unlock := p.locks.lock(userKey)
	defer unlock()

	balance := 0
	path := store.Path(store.CollectionUsers, userKey)
	err := mutateAggregate(ctx, p.store, path, func(doc map[string]interface{}) (map[string]interface{}, error) {
		if doc == nil {
			return nil, utils.NewProfileMissingError(userKey)
		}

		user := models.UserFromDoc(doc)
		user.Scores = append(user.Scores, models.ScoreEvent{
			Score:     score,
			Timestamp: time.Now().UnixMilli(),
		})
		balance = user.ScoreSum() - user.Redeemed
		user.Points = balance

		fields := user.Doc()
		return map[string]interface{}{
			"scores": fields["scores"],
			"points": user.Points,
		}, nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Redeem claims a reward for the user. The balance check is inclusive:
// a balance exactly equal to the cost succeeds. A reward with a missing
// or zero cost is always affordable.
//
// The claim record lives at claim_reward/{key} and holds only the
// latest claim; a second redemption overwrites the first.
func (p *PointsAccountor) Redeem(ctx context.Context, userEmail string, rewardID string, details models.RedemptionDetails) (*models.RedemptionRecord, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(rewardID); err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "malformed reward ID: "+rewardID, err)
	}

	rewardDoc, err := p.store.Get(ctx, store.Path(store.CollectionRewards, rewardID))
	if err != nil {
		return nil, utils.NewStoreError("get reward", err)
	}
	if rewardDoc == nil {
		return nil, utils.NewRewardNotFoundError(rewardID)
	}
	reward := models.RewardFromDoc(uuid.MustParse(rewardID), rewardDoc)
	cost := reward.PointsRequired

	userKey := SanitizeKey(userEmail)
	unlock := p.locks.lock(userKey)
	defer unlock()

	var record *models.RedemptionRecord
	path := store.Path(store.CollectionUsers, userKey)
	err = mutateAggregate(ctx, p.store, path, func(doc map[string]interface{}) (map[string]interface{}, error) {
		if doc == nil {
			return nil, utils.NewProfileMissingError(userKey)
		}

		user := models.UserFromDoc(doc)
		balance := user.ScoreSum() - user.Redeemed
		if balance < cost {
			return nil, utils.NewInsufficientPointsError(cost, balance)
		}

		record = &models.RedemptionRecord{
			UserEmail:   userEmail,
			RewardID:    rewardID,
			PointsCost:  cost,
			FullName:    details.FullName,
			PhoneNumber: details.PhoneNumber,
			Address:     details.Address,
			Status:      models.RedemptionPending,
			Timestamp:   time.Now().UnixMilli(),
		}
		return map[string]interface{}{
			"redeemed": user.Redeemed + cost,
			"points":   balance - cost,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	claimPath := store.Path(store.CollectionClaimReward, userKey)
	if err := p.store.Set(ctx, claimPath, record.Doc()); err != nil {
		return nil, utils.NewStoreError("set claim record", err)
	}
	return record, nil
}

// RedemptionStatus returns the user's latest claim for display.
func (p *PointsAccountor) RedemptionStatus(ctx context.Context, userEmail string) (*models.RedemptionRecord, error) {
	userKey := SanitizeKey(userEmail)
	doc, err := p.store.Get(ctx, store.Path(store.CollectionClaimReward, userKey))
	if err != nil {
		return nil, utils.NewStoreError("get claim record", err)
	}
	if doc == nil {
		return nil, utils.NewAppError(utils.ErrNotFound, "No redemption found for user: "+userKey, nil)
	}
	return models.RedemptionFromDoc(doc), nil
}

// UpdateRedemptionStatus applies the administrative pending -> fulfilled
// or pending -> rejected transition to the user's latest claim.
func (p *PointsAccountor) UpdateRedemptionStatus(ctx context.Context, userEmail string, status models.RedemptionStatus) (*models.RedemptionRecord, error) {
	if status != models.RedemptionFulfilled && status != models.RedemptionRejected {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "invalid redemption status: "+string(status), nil)
	}

	userKey := SanitizeKey(userEmail)
	unlock := p.locks.lock(userKey)
	defer unlock()

	var record *models.RedemptionRecord
	path := store.Path(store.CollectionClaimReward, userKey)
	err := mutateAggregate(ctx, p.store, path, func(doc map[string]interface{}) (map[string]interface{}, error) {
		if doc == nil {
			return nil, utils.NewAppError(utils.ErrNotFound, "No redemption found for user: "+userKey, nil)
		}
		record = models.RedemptionFromDoc(doc)
		if record.Status != models.RedemptionPending {
			return nil, utils.NewAppError(utils.ErrInvalidInput,
				"redemption is already "+string(record.Status), nil)
		}
		record.Status = status
		return map[string]interface{}{"status": string(status)}, nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SaveReward writes a catalog entry.
func (p *PointsAccountor) SaveReward(ctx context.Context, reward *models.Reward) error {
	if reward.Name == "" {
		return utils.NewAppError(utils.ErrInvalidInput, "reward name is required", nil)
	}
	if reward.PointsRequired < 0 {
		return utils.NewAppError(utils.ErrInvalidInput, "reward cost must be non-negative", nil)
	}
	path := store.Path(store.CollectionRewards, reward.ID.String())
	if err := p.store.Set(ctx, path, reward.Doc()); err != nil {
		return utils.NewStoreError("set reward", err)
	}
	return nil
}

// ListRewards returns the full reward catalog.
func (p *PointsAccountor) ListRewards(ctx context.Context) ([]*models.Reward, error) {
	docs, err := p.store.List(ctx, store.CollectionRewards)
	if err != nil {
		return nil, utils.NewStoreError("list rewards", err)
	}

	rewards := make([]*models.Reward, 0, len(docs))
	for id, doc := range docs {
		rewardID, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		rewards = append(rewards, models.RewardFromDoc(rewardID, doc))
	}
	return rewards, nil
}

func (p *PointsAccountor) fetchProfile(ctx context.Context, userEmail string) (*models.User, string, error) {
	userKey := SanitizeKey(userEmail)
	doc, err := p.store.Get(ctx, store.Path(store.CollectionUsers, userKey))
	if err != nil {
		return nil, "", utils.NewStoreError("get user profile", err)
	}
	if doc == nil {
		return nil, "", utils.NewProfileMissingError(userKey)
	}
	return models.UserFromDoc(doc), userKey, nil
}

func validateDetails(details models.RedemptionDetails) error {
	var missing []string
	if strings.TrimSpace(details.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(details.PhoneNumber) == "" {
		missing = append(missing, "phoneNumber")
	}
	if strings.TrimSpace(details.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return utils.NewAppError(utils.ErrInvalidInput,
			"missing required redemption fields: "+strings.Join(missing, ", "), nil)
	}
	return nil
}
