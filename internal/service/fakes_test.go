package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/contactbook/api/internal/model"
	"gorm.io/gorm"
)

// fakeCache is an in-memory stand-in for the Redis client.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
	failSet bool
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failGet {
		return nil, errors.New("redis unavailable")
	}
	data, ok := f.entries[key]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.failSet {
		return errors.New("redis unavailable")
	}
	f.entries[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) put(key string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

// fakeUserStore is an in-memory user repository keyed by email.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[string]*model.User
	nextID uint
	lookups int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:  make(map[string]*model.User),
		nextID: 1,
	}
}

func (f *fakeUserStore) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	user.ID = f.nextID
	f.nextID++
	clone := *user
	f.users[user.Email] = &clone
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	user, ok := f.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) UpdateRefreshToken(ctx context.Context, userID uint, token *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ID == userID {
			user.RefreshToken = token
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserStore) ConfirmEmail(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Confirmed = true
	return nil
}

func (f *fakeUserStore) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

// fakeMailer records confirmation sends and signals each one.
type fakeMailer struct {
	mu     sync.Mutex
	tokens []string
	sent   chan struct{}
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan struct{}, 16)}
}

func (f *fakeMailer) SendConfirmation(ctx context.Context, email, username, token string) error {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	f.sent <- struct{}{}
	return nil
}

func (f *fakeMailer) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}
