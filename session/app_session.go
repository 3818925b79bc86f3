package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Gin_postgres_redis_donations/auth"

	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("session not found")

// AppSessionStore keeps login sessions in Redis. Each user also has a set
// of their session ids so all of them can be revoked at once.
type AppSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl}
}

type AppSession struct {
	UserID      string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
	IssuedAt    int64  `json:"iat"`
	ExpiresAt   int64  `json:"exp"`
}

func (s *AppSession) Identity() *auth.Identity {
	return &auth.Identity{UID: s.UserID, Email: s.Email, DisplayName: s.DisplayName}
}

func (s *AppSessionStore) TTL() time.Duration { return s.ttl }

func key(id string) string         { return fmt.Sprintf("app:sess:%s", id) }
func userSetKey(uid string) string { return fmt.Sprintf("app:user_sessions:%s", uid) }

func (s *AppSessionStore) Create(ctx context.Context, id string, who auth.Identity) error {
	now := time.Now()
	b, err := json.Marshal(AppSession{
		UserID:      who.UID,
		Email:       who.Email,
		DisplayName: who.DisplayName,
		IssuedAt:    now.Unix(),
		ExpiresAt:   now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(who.UID), id)
	pipe.Expire(ctx, userSetKey(who.UID), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *AppSessionStore) Get(ctx context.Context, id string) (*AppSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var as AppSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *AppSessionStore) Delete(ctx context.Context, id string) error {
	as, _ := s.Get(ctx, id) // 忽略失败
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if as != nil {
		pipe.SRem(ctx, userSetKey(as.UserID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForUser drops every session the user holds.
func (s *AppSessionStore) RevokeAllForUser(ctx context.Context, userID string) error {
	ids, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}

// UpdateDisplayName rewrites the name in every live session of the user,
// keeping each session's remaining TTL. Expired ids are dropped from the set.
func (s *AppSessionStore) UpdateDisplayName(ctx context.Context, userID, name string) (int, error) {
	ids, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}

	n := 0
	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		as, err := s.Get(ctx, sid)
		if errors.Is(err, ErrNoSession) {
			pipe.SRem(ctx, userSetKey(userID), sid)
			continue
		}
		if err != nil {
			return 0, err
		}
		as.DisplayName = name
		b, err := json.Marshal(as)
		if err != nil {
			return 0, err
		}
		pipe.Set(ctx, key(sid), b, redis.KeepTTL)
		n++
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return n, nil
}
