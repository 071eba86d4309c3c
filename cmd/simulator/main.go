// Vote traffic simulator. Drives concurrent castVote calls against the
// in-memory store to show how the read-modify-write aggregate behaves
// with and without the ledger's per-report serialization.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"hazard-watch/internal/engine/actors"
	"hazard-watch/internal/ledger"
	"hazard-watch/internal/models"
	"hazard-watch/internal/store"
	"hazard-watch/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

func main() {
	voters := flag.Int("voters", 50, "number of concurrent voters")
	flag.Parse()

	docStore := store.NewMemoryStore()
	ctx := context.Background()

	emails := seedUsers(ctx, docStore, *voters)
	reportID := seedReport(ctx, docStore)

	fmt.Printf("Simulating %d concurrent upvotes on one report\n\n", *voters)

	// Pass 1: every voter goes through one shared ledger, the way a
	// single server process would.
	shared := ledger.NewVoteLedger(docStore)
	runVoters(emails, func(email string) error {
		_, err := shared.CastVote(ctx, reportID, email, models.VoteUp)
		return err
	})
	reportOutcome(ctx, docStore, reportID, *voters, "shared ledger (serialized per report)")

	resetReport(ctx, docStore, reportID)

	// Pass 2: every voter uses its own ledger instance, emulating
	// independent client processes with no shared lock. Lost updates
	// here are the documented last-write-wins outcome.
	runVoters(emails, func(email string) error {
		independent := ledger.NewVoteLedger(docStore)
		_, err := independent.CastVote(ctx, reportID, email, models.VoteUp)
		return err
	})
	reportOutcome(ctx, docStore, reportID, *voters, "independent ledgers (last-write-wins)")

	// Pass 3: rapid double-tap from one user through the actor layer.
	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector()
	resetReport(ctx, docStore, reportID)
	pid := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewReportActor(docStore, ledger.NewVoteLedger(docStore), metrics)
	}))

	voteMsg := &actors.CastVoteMsg{
		ReportID:  uuid.MustParse(reportID),
		UserEmail: emails[0],
		VoteType:  models.VoteUp,
	}
	for i := 0; i < 2; i++ {
		future := system.Root.RequestFuture(pid, voteMsg, 5*time.Second)
		if _, err := future.Result(); err != nil {
			log.Fatalf("double-tap vote failed: %v", err)
		}
	}
	doc, _ := docStore.Get(ctx, store.Path(store.CollectionPosts, reportID))
	agg := models.VoteAggregateFromDoc(doc)
	fmt.Printf("double-tap toggle: upvotes=%d voters=%d (expected 0/0, second tap retracts)\n",
		agg.Upvotes, len(agg.Voters))
}

func seedUsers(ctx context.Context, docStore store.Store, n int) []string {
	emails := make([]string, n)
	for i := range emails {
		email := fmt.Sprintf("voter%d@example.com", i)
		emails[i] = email
		user := &models.User{
			Email:       email,
			DisplayName: fmt.Sprintf("Voter %d", i),
			CreatedAt:   time.Now(),
		}
		path := store.Path(store.CollectionUsers, ledger.SanitizeKey(email))
		if err := docStore.Set(ctx, path, user.Doc()); err != nil {
			log.Fatalf("failed to seed user %s: %v", email, err)
		}
	}
	return emails
}

func seedReport(ctx context.Context, docStore store.Store) string {
	report := &models.Report{
		ID:          uuid.New(),
		Title:       "Pothole on the coastal road",
		HazardType:  "pothole",
		AuthorEmail: "voter0@example.com",
		CreatedAt:   time.Now(),
		Voters:      make(map[string]models.VoteRecord),
	}
	path := store.Path(store.CollectionPosts, report.ID.String())
	if err := docStore.Set(ctx, path, report.Doc()); err != nil {
		log.Fatalf("failed to seed report: %v", err)
	}
	return report.ID.String()
}

func resetReport(ctx context.Context, docStore store.Store, reportID string) {
	path := store.Path(store.CollectionPosts, reportID)
	err := docStore.Update(ctx, path, models.NewVoteAggregate().Fields())
	if err != nil {
		log.Fatalf("failed to reset report: %v", err)
	}
}

func runVoters(emails []string, vote func(email string) error) {
	var wg sync.WaitGroup
	for _, email := range emails {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			if err := vote(email); err != nil {
				log.Printf("vote from %s failed: %v", email, err)
			}
		}(email)
	}
	wg.Wait()
}

func reportOutcome(ctx context.Context, docStore store.Store, reportID string, expected int, label string) {
	doc, err := docStore.Get(ctx, store.Path(store.CollectionPosts, reportID))
	if err != nil {
		log.Fatalf("failed to read report: %v", err)
	}
	agg := models.VoteAggregateFromDoc(doc)
	fmt.Printf("%-45s upvotes=%-4d voters=%-4d lost=%d\n",
		label, agg.Upvotes, len(agg.Voters), expected-len(agg.Voters))
}
