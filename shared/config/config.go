// shared/config/config.go
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// CommonConfig holds configuration fields that are shared across services.
type CommonConfig struct {
	RedisAddrs        []string      // Redis server addresses (e.g., "redis-cluster:6379")
	RedisPassword     string        // Redis password for authentication
	HeartbeatInterval time.Duration // How often to send a heartbeat to the registry (e.g., 5s)
	HeartbeatTTL      time.Duration // How long an instance is considered alive without a heartbeat (e.g., 15s)
	ServiceIP         string        // The IP address this service advertises for registration (Kubernetes Pod IP)
	ServicePort       int           // The port this service listens on, used for registration
}

// TeamServiceConfig holds configuration specific to the team service.
type TeamServiceConfig struct {
	CommonConfig                            // Embed CommonConfig
	ListenAddr                string        // Address for the HTTP server to listen on (e.g., ":8083")
	MongoDBConnStr            string        // MongoDB connection string
	MongoDBDatabase           string        // MongoDB database name (e.g., "playscore")
	MongoDBTeamsCollection    string        // MongoDB collection for teams
	MongoDBUsersCollection    string        // MongoDB collection for user profiles
	MongoDBJoinReqsCollection string        // MongoDB collection for join requests
	OperationTimeout          time.Duration // Per-request timeout applied by the API handlers
}

// LoadCommonConfig loads common configuration from environment variables.
func LoadCommonConfig() (CommonConfig, error) {
	cfg := CommonConfig{}
	var err error

	redisAddrsStr := os.Getenv("REDIS_ADDRS")
	if redisAddrsStr == "" {
		cfg.RedisAddrs = []string{"localhost:6379"}
	} else {
		for _, addr := range strings.Split(redisAddrsStr, ",") {
			cfg.RedisAddrs = append(cfg.RedisAddrs, strings.TrimSpace(addr))
		}
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.HeartbeatInterval, err = getDuration("SERVICE_HEARTBEAT_INTERVAL", 5*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.HeartbeatTTL, err = getDuration("SERVICE_HEARTBEAT_TTL", 15*time.Second)
	if err != nil {
		return cfg, err
	}

	// Service IP (for registration, injected by Kubernetes as the Pod IP)
	cfg.ServiceIP = os.Getenv("POD_IP")
	if cfg.ServiceIP == "" {
		cfg.ServiceIP = "0.0.0.0"
	}

	return cfg, nil
}

// LoadTeamServiceConfig loads configuration for the team service.
func LoadTeamServiceConfig() (*TeamServiceConfig, error) {
	common, err := LoadCommonConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load common config for team-service: %w", err)
	}

	cfg := &TeamServiceConfig{
		CommonConfig:              common,
		ListenAddr:                os.Getenv("TEAM_SERVICE_LISTEN_ADDR"),
		MongoDBConnStr:            os.Getenv("MONGODB_CONN_STR"),
		MongoDBDatabase:           os.Getenv("MONGODB_DATABASE"),
		MongoDBTeamsCollection:    os.Getenv("MONGODB_TEAMS_COLLECTION"),
		MongoDBUsersCollection:    os.Getenv("MONGODB_USERS_COLLECTION"),
		MongoDBJoinReqsCollection: os.Getenv("MONGODB_JOIN_REQUESTS_COLLECTION"),
	}

	// Apply defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8083"
	}
	if cfg.MongoDBConnStr == "" {
		cfg.MongoDBConnStr = "mongodb://localhost:27017"
	}
	if cfg.MongoDBDatabase == "" {
		cfg.MongoDBDatabase = "playscore"
	}
	if cfg.MongoDBTeamsCollection == "" {
		cfg.MongoDBTeamsCollection = "teams"
	}
	if cfg.MongoDBUsersCollection == "" {
		cfg.MongoDBUsersCollection = "users"
	}
	if cfg.MongoDBJoinReqsCollection == "" {
		cfg.MongoDBJoinReqsCollection = "join_requests"
	}

	cfg.OperationTimeout, err = getDuration("TEAM_SERVICE_OPERATION_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	// Extract ServicePort from ListenAddr
	cfg.ServicePort, err = extractPort(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract port from TEAM_SERVICE_LISTEN_ADDR '%s': %w", cfg.ListenAddr, err)
	}

	return cfg, nil
}

// Helper function to parse duration from environment variable
func getDuration(envKey string, defaultVal time.Duration) (time.Duration, error) {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format for %s: %w", envKey, err)
	}
	return d, nil
}

// extractPort extracts the numeric port from a listen address (e.g., ":8083" -> 8083, "0.0.0.0:8083" -> 8083)
func extractPort(listenAddr string) (int, error) {
	_, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		// If SplitHostPort fails, check if ListenAddr is just a port (e.g., ":8083")
		if strings.HasPrefix(listenAddr, ":") {
			portStr = strings.TrimPrefix(listenAddr, ":")
		} else {
			return 0, fmt.Errorf("invalid ListenAddr format for port extraction: %w", err)
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number '%s': %w", portStr, err)
	}
	return port, nil
}
