package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const catalogChannel = "patternhub:catalog"

// PubSubMessage represents a message sent via pub/sub
type PubSubMessage struct {
	Type       string `json:"type"` // "catalog_refreshed"
	InstanceID string `json:"instanceId"`
	Patterns   int    `json:"patterns"`
	Version    string `json:"version,omitempty"`
}

// MessageHandler is a callback for handling pub/sub messages
type MessageHandler func(msg *PubSubMessage)

// PubSubService relays catalog refresh events between server instances over
// Redis, so every instance (and its WebSocket clients) learns about a reload
// no matter which instance performed it.
type PubSubService struct {
	redis      *RedisService
	pubsub     *redis.PubSub
	handlers   []MessageHandler
	mu         sync.RWMutex
	instanceID string
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewPubSubService creates a new pub/sub service
func NewPubSubService(redisService *RedisService, instanceID string) *PubSubService {
	ctx, cancel := context.WithCancel(context.Background())
	return &PubSubService{
		redis:      redisService,
		instanceID: instanceID,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Subscribe registers a handler for incoming catalog messages
func (s *PubSubService) Subscribe(handler MessageHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Start begins listening for pub/sub messages
func (s *PubSubService) Start() error {
	s.pubsub = s.redis.Client().Subscribe(s.ctx, catalogChannel)

	// Wait for subscription confirmation
	if _, err := s.pubsub.Receive(s.ctx); err != nil {
		return err
	}

	go s.processMessages()

	log.Printf("✅ [PUBSUB] Listening on %s (instance: %s)", catalogChannel, s.instanceID)
	return nil
}

// Publish broadcasts a message to all instances
func (s *PubSubService) Publish(ctx context.Context, msg PubSubMessage) error {
	msg.InstanceID = s.instanceID
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.redis.Client().Publish(ctx, catalogChannel, payload).Err()
}

// Stop shuts down the subscription
func (s *PubSubService) Stop() {
	s.cancel()
	if s.pubsub != nil {
		s.pubsub.Close()
	}
}

func (s *PubSubService) processMessages() {
	ch := s.pubsub.Channel()

	for {
		select {
		case <-s.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handleMessage(msg)
		}
	}
}

func (s *PubSubService) handleMessage(msg *redis.Message) {
	var message PubSubMessage
	if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
		log.Printf("⚠️ [PUBSUB] Failed to unmarshal message: %v", err)
		return
	}

	// Skip messages from this instance (avoid loops)
	if message.InstanceID == s.instanceID {
		return
	}

	s.mu.RLock()
	handlers := make([]MessageHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler(&message)
	}
}
