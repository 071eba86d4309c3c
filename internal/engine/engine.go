package engine

import (
	"hazard-watch/internal/engine/actors"
	"hazard-watch/internal/ledger"
	"hazard-watch/internal/store"
	"hazard-watch/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between actors. All actors share one
// document store; the ledger components own the mutation state machines.
type Engine struct {
	reportActor  *actor.PID
	rewardActor  *actor.PID
	accountActor *actor.PID
}

func NewEngine(system *actor.ActorSystem, s store.Store, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	votes := ledger.NewVoteLedger(s)
	points := ledger.NewPointsAccountor(s)

	reportProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewReportActor(s, votes, metrics)
	})
	reportPID := context.Spawn(reportProps)

	rewardProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewRewardActor(points, metrics)
	})
	rewardPID := context.Spawn(rewardProps)

	accountProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewAccountActor(s, metrics)
	})
	accountPID := context.Spawn(accountProps)

	return &Engine{
		reportActor:  reportPID,
		rewardActor:  rewardPID,
		accountActor: accountPID,
	}
}

// GetReportActor returns the PID of the report actor
func (e *Engine) GetReportActor() *actor.PID {
	return e.reportActor
}

// GetRewardActor returns the PID of the reward actor
func (e *Engine) GetRewardActor() *actor.PID {
	return e.rewardActor
}

// GetAccountActor returns the PID of the account actor
func (e *Engine) GetAccountActor() *actor.PID {
	return e.accountActor
}
