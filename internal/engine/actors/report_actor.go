package actors

import (
	"log"
	"sort"
	"strings"
	"time"

	stdctx "context"

	"hazard-watch/internal/ledger"
	"hazard-watch/internal/models"
	"hazard-watch/internal/store"
	"hazard-watch/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for report operations
type (
	CreateReportMsg struct {
		Title       string
		Description string
		HazardType  string
		Latitude    float64
		Longitude   float64
		AuthorEmail string
		PhotoURL    string
	}

	GetReportMsg struct {
		ReportID uuid.UUID
	}

	GetRecentReportsMsg struct {
		Limit int
	}

	CastVoteMsg struct {
		ReportID  uuid.UUID
		UserEmail string
		VoteType  models.VoteType
	}

	GetCountsMsg struct{}
)

// ReportActor handles hazard report operations. Votes are delegated to
// the vote ledger so the tally state machine lives in one place.
type ReportActor struct {
	store   store.Store
	votes   *ledger.VoteLedger
	metrics *utils.MetricsCollector
}

func NewReportActor(s store.Store, votes *ledger.VoteLedger, metrics *utils.MetricsCollector) actor.Actor {
	return &ReportActor{
		store:   s,
		votes:   votes,
		metrics: metrics,
	}
}

func (a *ReportActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("ReportActor started")
	case *actor.Stopping:
		log.Printf("ReportActor stopping")
	case *CreateReportMsg:
		a.handleCreateReport(context, msg)
	case *GetReportMsg:
		a.handleGetReport(context, msg)
	case *GetRecentReportsMsg:
		a.handleGetRecentReports(context, msg)
	case *CastVoteMsg:
		log.Printf("ReportActor: Processing %s on report %s from %s", msg.VoteType, msg.ReportID, msg.UserEmail)
		a.handleCastVote(context, msg)
	case *GetCountsMsg:
		a.handleGetCounts(context)
	default:
		log.Printf("ReportActor: Unknown message type: %T", msg)
	}
}

func (a *ReportActor) handleCreateReport(context actor.Context, msg *CreateReportMsg) {
	startTime := time.Now()

	if strings.TrimSpace(msg.Title) == "" || strings.TrimSpace(msg.HazardType) == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "title and hazard type are required", nil))
		return
	}

	ctx := stdctx.Background()

	// Authoring requires a resolved profile, same as voting.
	authorKey := ledger.SanitizeKey(msg.AuthorEmail)
	profileDoc, err := a.store.Get(ctx, store.Path(store.CollectionUsers, authorKey))
	if err != nil {
		context.Respond(utils.NewStoreError("get author profile", err))
		return
	}
	if profileDoc == nil {
		context.Respond(utils.NewProfileMissingError(authorKey))
		return
	}

	report := &models.Report{
		ID:          uuid.New(),
		Title:       msg.Title,
		Description: msg.Description,
		HazardType:  msg.HazardType,
		Latitude:    msg.Latitude,
		Longitude:   msg.Longitude,
		AuthorEmail: msg.AuthorEmail,
		PhotoURL:    msg.PhotoURL,
		CreatedAt:   time.Now(),
		Voters:      make(map[string]models.VoteRecord),
	}

	log.Printf("ReportActor: Creating report %s (%s)", report.ID, report.HazardType)

	if err := a.store.Set(ctx, store.Path(store.CollectionPosts, report.ID.String()), report.Doc()); err != nil {
		context.Respond(utils.NewStoreError("set report", err))
		return
	}

	a.metrics.AddOperationLatency("create_report", time.Since(startTime))
	context.Respond(report)
}

func (a *ReportActor) handleGetReport(context actor.Context, msg *GetReportMsg) {
	doc, err := a.store.Get(stdctx.Background(), store.Path(store.CollectionPosts, msg.ReportID.String()))
	if err != nil {
		context.Respond(utils.NewStoreError("get report", err))
		return
	}
	if doc == nil {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Report not found", nil))
		return
	}
	context.Respond(models.ReportFromDoc(msg.ReportID, doc))
}

func (a *ReportActor) handleGetRecentReports(context actor.Context, msg *GetRecentReportsMsg) {
	startTime := time.Now()

	docs, err := a.store.List(stdctx.Background(), store.CollectionPosts)
	if err != nil {
		context.Respond(utils.NewStoreError("list reports", err))
		return
	}

	reports := make([]*models.Report, 0, len(docs))
	for id, doc := range docs {
		reportID, err := uuid.Parse(id)
		if err != nil {
			log.Printf("ReportActor: Skipping report with invalid ID %q", id)
			continue
		}
		reports = append(reports, models.ReportFromDoc(reportID, doc))
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	if msg.Limit > 0 && len(reports) > msg.Limit {
		reports = reports[:msg.Limit]
	}

	a.metrics.AddOperationLatency("get_recent_reports", time.Since(startTime))
	context.Respond(reports)
}

func (a *ReportActor) handleCastVote(context actor.Context, msg *CastVoteMsg) {
	startTime := time.Now()

	aggregate, err := a.votes.CastVote(stdctx.Background(), msg.ReportID.String(), msg.UserEmail, msg.VoteType)
	if err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			context.Respond(appErr)
		} else {
			context.Respond(utils.NewStoreError("cast vote", err))
		}
		return
	}

	a.metrics.AddOperationLatency("cast_vote", time.Since(startTime))
	context.Respond(aggregate)
}

func (a *ReportActor) handleGetCounts(context actor.Context) {
	docs, err := a.store.List(stdctx.Background(), store.CollectionPosts)
	if err != nil {
		context.Respond(utils.NewStoreError("list reports", err))
		return
	}
	context.Respond(len(docs))
}
