package actors

import (
	"log"
	"time"

	stdctx "context"

	"hazard-watch/internal/ledger"
	"hazard-watch/internal/models"
	"hazard-watch/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for points and reward operations
type (
	RecordScoreMsg struct {
		UserEmail string
		Score     int
	}

	GetBalanceMsg struct {
		UserEmail string
	}

	RedeemRewardMsg struct {
		UserEmail string
		RewardID  string
		Details   models.RedemptionDetails
	}

	GetRedemptionStatusMsg struct {
		UserEmail string
	}

	UpdateRedemptionStatusMsg struct {
		UserEmail string
		Status    models.RedemptionStatus
	}

	CreateRewardMsg struct {
		Name           string
		Description    string
		PointsRequired int
		Active         bool
	}

	ListRewardsMsg struct{}

	// BalanceResponse carries the balance back to the caller.
	BalanceResponse struct {
		UserEmail string `json:"userEmail"`
		Points    int    `json:"points"`
	}
)

// RewardActor handles score recording, balance queries and reward
// redemption, all delegated to the points accountor.
type RewardActor struct {
	points  *ledger.PointsAccountor
	metrics *utils.MetricsCollector
}

func NewRewardActor(points *ledger.PointsAccountor, metrics *utils.MetricsCollector) actor.Actor {
	return &RewardActor{
		points:  points,
		metrics: metrics,
	}
}

func (a *RewardActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("RewardActor started")
	case *RecordScoreMsg:
		a.handleRecordScore(context, msg)
	case *GetBalanceMsg:
		a.handleGetBalance(context, msg)
	case *RedeemRewardMsg:
		log.Printf("RewardActor: Processing redemption of %s by %s", msg.RewardID, msg.UserEmail)
		a.handleRedeem(context, msg)
	case *GetRedemptionStatusMsg:
		a.handleGetRedemptionStatus(context, msg)
	case *UpdateRedemptionStatusMsg:
		a.handleUpdateRedemptionStatus(context, msg)
	case *CreateRewardMsg:
		a.handleCreateReward(context, msg)
	case *ListRewardsMsg:
		a.handleListRewards(context)
	}
}

func (a *RewardActor) handleRecordScore(context actor.Context, msg *RecordScoreMsg) {
	startTime := time.Now()

	balance, err := a.points.RecordScore(stdctx.Background(), msg.UserEmail, msg.Score)
	if err != nil {
		context.Respond(asAppError(err, "record score"))
		return
	}

	a.metrics.AddOperationLatency("record_score", time.Since(startTime))
	context.Respond(&BalanceResponse{UserEmail: msg.UserEmail, Points: balance})
}

func (a *RewardActor) handleGetBalance(context actor.Context, msg *GetBalanceMsg) {
	balance, err := a.points.Balance(stdctx.Background(), msg.UserEmail)
	if err != nil {
		context.Respond(asAppError(err, "get balance"))
		return
	}
	context.Respond(&BalanceResponse{UserEmail: msg.UserEmail, Points: balance})
}

func (a *RewardActor) handleRedeem(context actor.Context, msg *RedeemRewardMsg) {
	startTime := time.Now()

	record, err := a.points.Redeem(stdctx.Background(), msg.UserEmail, msg.RewardID, msg.Details)
	if err != nil {
		context.Respond(asAppError(err, "redeem reward"))
		return
	}

	a.metrics.AddOperationLatency("redeem_reward", time.Since(startTime))
	context.Respond(record)
}

func (a *RewardActor) handleGetRedemptionStatus(context actor.Context, msg *GetRedemptionStatusMsg) {
	record, err := a.points.RedemptionStatus(stdctx.Background(), msg.UserEmail)
	if err != nil {
		context.Respond(asAppError(err, "get redemption status"))
		return
	}
	context.Respond(record)
}

func (a *RewardActor) handleUpdateRedemptionStatus(context actor.Context, msg *UpdateRedemptionStatusMsg) {
	record, err := a.points.UpdateRedemptionStatus(stdctx.Background(), msg.UserEmail, msg.Status)
	if err != nil {
		context.Respond(asAppError(err, "update redemption status"))
		return
	}
	context.Respond(record)
}

func (a *RewardActor) handleCreateReward(context actor.Context, msg *CreateRewardMsg) {
	reward := &models.Reward{
		ID:             uuid.New(),
		Name:           msg.Name,
		Description:    msg.Description,
		PointsRequired: msg.PointsRequired,
		Active:         msg.Active,
	}
	if err := a.points.SaveReward(stdctx.Background(), reward); err != nil {
		context.Respond(asAppError(err, "save reward"))
		return
	}
	context.Respond(reward)
}

func (a *RewardActor) handleListRewards(context actor.Context) {
	rewards, err := a.points.ListRewards(stdctx.Background())
	if err != nil {
		context.Respond(asAppError(err, "list rewards"))
		return
	}
	context.Respond(rewards)
}

// asAppError passes AppErrors through unchanged and wraps anything else
// as a store failure so handlers always see one error shape.
func asAppError(err error, op string) *utils.AppError {
	if appErr, ok := err.(*utils.AppError); ok {
		return appErr
	}
	return utils.NewStoreError(op, err)
}
