package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/contactbook/api/internal/model"
	"github.com/contactbook/api/pkg/logger"
	"gorm.io/gorm"

	domainErrors "github.com/contactbook/api/internal/errors"
)

// Cache is the subset of the Redis client the session cache needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// UserGetter is the subset of the user repository the session cache needs.
type UserGetter interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// sessionSnapshot is the cached view of an account. Credentials and the
// stored refresh token never enter the cache.
type sessionSnapshot struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Confirmed bool    `json:"confirmed"`
	Avatar    *string `json:"avatar"`
}

// SessionCache resolves authenticated users through a Redis read-through
// cache so the hot auth path skips the database.
type SessionCache struct {
	cache Cache
	users UserGetter
	ttl   time.Duration
}

func NewSessionCache(cache Cache, users UserGetter, ttl time.Duration) *SessionCache {
	return &SessionCache{
		cache: cache,
		users: users,
		ttl:   ttl,
	}
}

func sessionKey(email string) string {
	return fmt.Sprintf("user:%s", email)
}

// Resolve returns the account for email, consulting the cache first.
// Cache failures degrade to a database read instead of failing the
// request.
func (s *SessionCache) Resolve(ctx context.Context, email string) (*model.User, error) {
	key := sessionKey(email)

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.WarnWithContext(ctx, "Session cache read failed, falling back to database").
			String("email", email).
			Err(err).
			Log()
	} else if data != nil {
		var snapshot sessionSnapshot
		if err := json.Unmarshal(data, &snapshot); err == nil {
			logger.DebugWithContext(ctx, "Session cache hit").
				String("email", email).
				Log()
			return snapshotToUser(&snapshot), nil
		}
		logger.WarnWithContext(ctx, "Corrupt session cache entry, refreshing from database").
			String("email", email).
			Log()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, domainErrors.WrapError(domainErrors.ErrInternal, err)
	}

	s.store(ctx, key, user)

	return user, nil
}

func (s *SessionCache) store(ctx context.Context, key string, user *model.User) {
	snapshot := sessionSnapshot{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Confirmed: user.Confirmed,
		Avatar:    user.Avatar,
	}

	data, err := json.Marshal(&snapshot)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		logger.WarnWithContext(ctx, "Session cache write failed").
			String("email", user.Email).
			Err(err).
			Log()
	}
}

func snapshotToUser(snapshot *sessionSnapshot) *model.User {
	user := &model.User{
		Username:  snapshot.Username,
		Email:     snapshot.Email,
		Confirmed: snapshot.Confirmed,
		Avatar:    snapshot.Avatar,
	}
	user.ID = snapshot.ID
	return user
}
