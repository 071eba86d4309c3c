package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"hazard-watch/internal/config"
	"hazard-watch/internal/engine"
	"hazard-watch/internal/handlers"
	"hazard-watch/internal/middleware"
	"hazard-watch/internal/store"
	"hazard-watch/internal/utils"
	"hazard-watch/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func newStore(cfg *config.StoreConfig) (store.Store, error) {
	switch cfg.Type {
	case "mongo":
		return store.NewMongoStore(cfg.MongoURI, cfg.MongoDBName)
	case "postgres":
		return store.NewPostgresStore(cfg.PostgresURL)
	default:
		log.Println("Using in-memory store; data will not survive restarts")
		return store.NewMemoryStore(), nil
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	docStore, err := newStore(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}
	defer docStore.Close(context.Background())

	metrics := utils.NewMetricsCollector()

	// Initialize actor system and engine
	system := actor.NewActorSystem()
	hazardEngine := engine.NewEngine(system, docStore, metrics)

	// Live report updates: store subscription -> websocket hub
	hub := websocket.NewHub()
	go hub.Run()
	cancelWatch, err := hub.WatchReports(docStore)
	if err != nil {
		log.Fatalf("Failed to subscribe to report updates: %v", err)
	}
	defer cancelWatch()

	server := handlers.NewServer(system, system.Root, hazardEngine, metrics, docStore, hub)

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	cors := middleware.CORSMiddleware(corsConfig)

	mux := http.NewServeMux()
	route := func(path string, handler http.HandlerFunc) {
		mux.Handle(path, cors(middleware.ApplyJWTMiddleware(handler, path)))
	}

	route("/health", server.HandleHealth())
	route("/user/register", server.HandleUserRegistration())
	route("/user/login", server.HandleUserLogin())
	route("/user/profile", server.HandleUserProfile())
	route("/user/score", server.HandleScore())
	route("/user/balance", server.HandleBalance())
	route("/report", server.HandleReport())
	route("/report/recent", server.HandleRecentReports())
	route("/report/vote", server.HandleVote())
	route("/reward", server.HandleReward())
	route("/reward/redeem", server.HandleRedeem())
	route("/reward/status", server.HandleRedemptionStatus())
	route("/ws", server.HandleWebSocket())

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s (store: %s)", serverAddr, cfg.Store.Type)
	if err := http.ListenAndServe(serverAddr, mux); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
