// team/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pablisEsp/PlayScore-sub000/shared/api"
	"github.com/pablisEsp/PlayScore-sub000/shared/config"
	mongodbu "github.com/pablisEsp/PlayScore-sub000/shared/mongodb"
	redisu "github.com/pablisEsp/PlayScore-sub000/shared/redis"
	"github.com/pablisEsp/PlayScore-sub000/shared/registry"
	teamapi "github.com/pablisEsp/PlayScore-sub000/team/api"
	"github.com/pablisEsp/PlayScore-sub000/team/live"
	"github.com/pablisEsp/PlayScore-sub000/team/service"
	"github.com/pablisEsp/PlayScore-sub000/team/store"
)

func main() {
	// --- 1. Load Configuration ---
	cfg, err := config.LoadTeamServiceConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- 2. Connect to MongoDB ---
	mongoClient, err := mongodbu.NewClient(cfg.MongoDBConnStr, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("ERROR: Failed to disconnect from MongoDB: %v", err)
		}
	}()

	// --- 3. Connect to Redis ---
	redisClient, err := redisu.NewUniversalClient(cfg.RedisAddrs, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("ERROR: Failed to close Redis client: %v", err)
		}
	}()

	// --- 4. Initialize Data Stores ---
	teamStore := store.NewTeamStore(mongoClient.Collection(cfg.MongoDBTeamsCollection))
	userStore := store.NewUserStore(mongoClient.Collection(cfg.MongoDBUsersCollection))
	requestStore := store.NewJoinRequestStore(mongoClient.Collection(cfg.MongoDBJoinReqsCollection))

	// --- 5. Ensure Indexes (conditional-write guarantees depend on these) ---
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer indexCancel()
	if err := teamStore.EnsureIndexes(indexCtx); err != nil {
		log.Fatalf("Failed to ensure team indexes: %v", err)
	}
	if err := requestStore.EnsureIndexes(indexCtx); err != nil {
		log.Fatalf("Failed to ensure join request indexes: %v", err)
	}

	// --- 6. Initialize Live Update Publisher ---
	publisher := live.NewPublisher(redisClient)

	// --- 7. Initialize Business Logic Services ---
	membershipService := service.NewMembershipService(teamStore, userStore, publisher)
	roleChangeService := service.NewRoleChangeService(teamStore, userStore, publisher)
	joinRequestService := service.NewJoinRequestService(teamStore, userStore, requestStore, publisher)

	// --- 8. Initialize API Handlers ---
	handlers := teamapi.NewTeamAPIHandlers(membershipService, roleChangeService, joinRequestService, cfg.OperationTimeout)

	// --- 9. Initialize and Start Service Registrar ---
	registrar := registry.NewServiceRegistrar(redisClient, "team-service", &cfg.CommonConfig)
	registrar.Start()
	defer registrar.Stop()

	// --- 10. Setup HTTP Server and Register Routes ---
	baseServer := api.NewBaseServer(cfg.ListenAddr, log.Default())
	handlers.RegisterRoutes(baseServer.Router)

	// --- 11. Start HTTP Server ---
	go func() {
		if err := baseServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	// --- 12. Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := baseServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server graceful shutdown failed: %v", err)
	}
	log.Println("Server gracefully stopped.")
}
