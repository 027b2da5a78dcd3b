// shared/registry/registrar.go
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pablisEsp/PlayScore-sub000/shared/config"
	"github.com/redis/go-redis/v9"
)

// RedisRegistryHashPrefix is the prefix for the Redis hash keys that store
// service registration data. The full key format is "services:<serviceType>",
// e.g. "services:team-service".
const RedisRegistryHashPrefix = "services:"

// ServiceInfo represents the details of a registered service instance,
// stored in Redis and used for service discovery.
type ServiceInfo struct {
	ServiceID   string `json:"serviceId"`
	ServiceType string `json:"serviceType"`
	IP          string `json:"ip"`
	Port        int    `json:"port"`
	LastSeen    int64  `json:"lastSeen"` // unix millis of the last heartbeat
}

// ServiceRegistrar handles the self-registration and heartbeating of a
// service instance.
type ServiceRegistrar struct {
	redisClient redis.UniversalClient
	serviceType string
	cfg         *config.CommonConfig
	serviceID   string
	stopChan    chan struct{}
	doneChan    chan struct{}
}

// NewServiceRegistrar creates a new ServiceRegistrar with a unique instance id.
func NewServiceRegistrar(redisClient redis.UniversalClient, serviceType string, cfg *config.CommonConfig) *ServiceRegistrar {
	return &ServiceRegistrar{
		redisClient: redisClient,
		serviceType: serviceType,
		cfg:         cfg,
		serviceID:   fmt.Sprintf("%s-%s", serviceType, uuid.New().String()),
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start begins the registration and heartbeating loop in a goroutine.
func (sr *ServiceRegistrar) Start() {
	log.Printf("INFO: Starting service registrar for %s (ID: %s) at %s:%d",
		sr.serviceType, sr.serviceID, sr.cfg.ServiceIP, sr.cfg.ServicePort)
	go sr.run()
}

// Stop signals the registrar to stop, waits for it, and removes this
// instance from the registry.
func (sr *ServiceRegistrar) Stop() {
	close(sr.stopChan)
	<-sr.doneChan

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hashKey := RedisRegistryHashPrefix + sr.serviceType
	if _, err := sr.redisClient.HDel(ctx, hashKey, sr.serviceID).Result(); err != nil {
		log.Printf("ERROR: Failed to remove service %s (ID: %s) from registry on shutdown: %v",
			sr.serviceType, sr.serviceID, err)
	} else {
		log.Printf("INFO: Service %s (ID: %s) removed from registry on shutdown.",
			sr.serviceType, sr.serviceID)
	}
}

// ServiceID returns the unique ID assigned to this service instance.
func (sr *ServiceRegistrar) ServiceID() string {
	return sr.serviceID
}

func (sr *ServiceRegistrar) run() {
	defer close(sr.doneChan)

	ticker := time.NewTicker(sr.cfg.HeartbeatInterval)
	defer ticker.Stop()

	sr.registerService()

	for {
		select {
		case <-ticker.C:
			sr.registerService()
		case <-sr.stopChan:
			return
		}
	}
}

// registerService performs the actual registration/heartbeat in Redis. The
// entry's TTL semantics come from LastSeen: consumers treat an entry older
// than the heartbeat TTL as gone.
func (sr *ServiceRegistrar) registerService() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	info := ServiceInfo{
		ServiceID:   sr.serviceID,
		ServiceType: sr.serviceType,
		IP:          sr.cfg.ServiceIP,
		Port:        sr.cfg.ServicePort,
		LastSeen:    time.Now().UnixMilli(),
	}
	infoJSON, err := json.Marshal(info)
	if err != nil {
		log.Printf("ERROR: Failed to marshal ServiceInfo for %s (ID: %s): %v", sr.serviceType, sr.serviceID, err)
		return
	}

	hashKey := RedisRegistryHashPrefix + sr.serviceType
	if _, err := sr.redisClient.HSet(ctx, hashKey, sr.serviceID, infoJSON).Result(); err != nil {
		log.Printf("ERROR: Failed to heartbeat service %s (ID: %s): %v", sr.serviceType, sr.serviceID, err)
	}
}
