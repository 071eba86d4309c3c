package ledger

import (
	"context"
	"time"

	"hazard-watch/internal/models"
	"hazard-watch/internal/store"
	"hazard-watch/internal/utils"
)

// VoteLedger applies vote intents to report tallies with toggle
// semantics and keeps the counters consistent with the voter registry.
type VoteLedger struct {
	store store.Store
	locks *keyedMutex
}

func NewVoteLedger(s store.Store) *VoteLedger {
	return &VoteLedger{
		store: s,
		locks: newKeyedMutex(),
	}
}

// CastVote applies one user's vote to a report and returns the updated
// aggregate for immediate display.
//
// Toggle semantics:
//   - no previous vote: the vote is recorded and its counter incremented
//   - same vote again: the vote is retracted entirely
//   - opposite vote: the previous vote is switched, both counters adjust
//
// Voting requires a resolved profile, not just an authenticated token:
// the voter's display name and photo are denormalized into the registry
// entry so report views render without extra lookups.
func (l *VoteLedger) CastVote(ctx context.Context, reportID string, userEmail string, voteType models.VoteType) (*models.VoteAggregate, error) {
	if reportID == "" || userEmail == "" {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "report ID and user email are required", nil)
	}
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "unknown vote type: "+string(voteType), nil)
	}

	voterKey := SanitizeKey(userEmail)

	profile, err := l.fetchProfile(ctx, voterKey)
	if err != nil {
		return nil, err
	}

	// One guard per report serializes every in-process vote on it, which
	// removes both the double-tap self-race and same-process lost
	// updates between users. Writers in other processes still follow
	// last-write-wins.
	unlock := l.locks.lock(reportID)
	defer unlock()

	var updated *models.VoteAggregate
	path := store.Path(store.CollectionPosts, reportID)
	err = mutateAggregate(ctx, l.store, path, func(doc map[string]interface{}) (map[string]interface{}, error) {
		if doc == nil {
			return nil, utils.NewAppError(utils.ErrNotFound, "Report not found: "+reportID, nil)
		}

		agg := models.VoteAggregateFromDoc(doc)
		previous, hasVoted := agg.Voters[voterKey]

		switch {
		case !hasVoted:
			agg.Bump(voteType, 1)
			agg.Voters[voterKey] = models.VoteRecord{
				VoteType:   voteType,
				VoterName:  profile.DisplayName,
				VoterEmail: userEmail,
				VoterPhoto: profile.PhotoURL,
				Timestamp:  time.Now().UnixMilli(),
			}

		case previous.VoteType == voteType:
			// Same action again retracts the vote entirely.
			agg.Bump(voteType, -1)
			delete(agg.Voters, voterKey)

		default:
			agg.Bump(previous.VoteType, -1)
			agg.Bump(voteType, 1)
			agg.Voters[voterKey] = models.VoteRecord{
				VoteType:   voteType,
				VoterName:  profile.DisplayName,
				VoterEmail: userEmail,
				VoterPhoto: profile.PhotoURL,
				Timestamp:  time.Now().UnixMilli(),
			}
		}

		updated = agg
		return agg.Fields(), nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (l *VoteLedger) fetchProfile(ctx context.Context, voterKey string) (*models.User, error) {
	doc, err := l.store.Get(ctx, store.Path(store.CollectionUsers, voterKey))
	if err != nil {
		return nil, utils.NewStoreError("get user profile", err)
	}
	if doc == nil {
		return nil, utils.NewProfileMissingError(voterKey)
	}
	return models.UserFromDoc(doc), nil
}
