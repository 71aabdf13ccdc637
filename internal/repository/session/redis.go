package sessionrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/repository"
	"github.com/creditmitra/loanflow/pkg/common"
)

const redisKeyPrefix = "chatsession:"

// redisStore keeps sessions in redis so conversations survive process
// restarts. Expiry is delegated to redis key TTLs; zero disables it.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log *zap.Logger) repository.SessionStore {
	return &redisStore{client: client, ttl: ttl, log: log}
}

func (r *redisStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrSessionNotFound
		}
		return nil, fmt.Errorf("reading session %s: %w", sessionID, err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		r.log.Error("Corrupt session payload in redis",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}

	return &session, nil
}

func (r *redisStore) GetOrCreate(ctx context.Context, sessionID, customerID string) (*domain.Session, error) {
	session, err := r.Get(ctx, sessionID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, common.ErrSessionNotFound) {
		return nil, err
	}

	session = &domain.Session{
		ID:         sessionID,
		CustomerID: customerID,
		Stage:      domain.StageInit,
	}
	if err := r.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (r *redisStore) Save(ctx context.Context, session *domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", session.ID, err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+session.ID, raw, r.expiry()).Err(); err != nil {
		return fmt.Errorf("writing session %s: %w", session.ID, err)
	}

	return nil
}

func (r *redisStore) expiry() time.Duration {
	if r.ttl <= 0 {
		return 0 // no expiry
	}
	return r.ttl
}
