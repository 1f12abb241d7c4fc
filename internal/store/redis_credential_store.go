package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Fatihur/api-baru/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCredentialStore implements CredentialStore on a Redis keyspace.
// One key per namespace: cred:<tenant>:<session>. Tenant deletion scans
// the tenant's key prefix.
type RedisCredentialStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCredentialStore creates a Redis-backed credential store
func NewRedisCredentialStore(host string, port int, password string, db int, logger *zap.Logger) (CredentialStore, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCredentialStore{
		client: client,
		logger: logger,
	}, nil
}

func credentialKey(key model.SessionKey) string {
	return fmt.Sprintf("cred:%s:%s", key.TenantID, key.Name)
}

// Namespace returns the stored blob, or nil for a fresh session.
func (s *RedisCredentialStore) Namespace(ctx context.Context, key model.SessionKey) ([]byte, error) {
	blob, err := s.client.Get(ctx, credentialKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return blob, nil
}

// Save replaces the namespace's credential blob. No TTL: credentials live
// until the session is deleted.
func (s *RedisCredentialStore) Save(ctx context.Context, key model.SessionKey, blob []byte) error {
	return s.client.Set(ctx, credentialKey(key), blob, 0).Err()
}

// Delete removes the session's namespace.
func (s *RedisCredentialStore) Delete(ctx context.Context, key model.SessionKey) error {
	return s.client.Del(ctx, credentialKey(key)).Err()
}

// DeleteTenant removes every namespace owned by the tenant.
func (s *RedisCredentialStore) DeleteTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("tenant id is required")
	}

	pattern := fmt.Sprintf("cred:%s:*", tenantID)
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan tenant credentials: %w", err)
	}

	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete tenant credentials: %w", err)
		}
	}

	s.logger.Info("Tenant credential keys deleted",
		zap.String("tenant_id", tenantID),
		zap.Int("keys", len(keys)))
	return nil
}

// Close closes the Redis client
func (s *RedisCredentialStore) Close() {
	_ = s.client.Close()
}
