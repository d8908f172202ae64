// Package scope serializes all writes of one user. Every change of the
// ledger, streaks, unlocks and challenge completions of a user happens inside
// Manager.Do, so two concurrent events of the same user are applied one after
// the other, while events of different users never wait for each other.
package scope

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/progression/internal/common"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/questx-lab/progression/pkg/xredis"
)

const tokenRetryInterval = 20 * time.Millisecond

type heldUsersKey struct{}

// userLock is a mutex which can be abandoned when the context is done. refs
// counts the holder and the waiters, the lock is evicted when it drops to 0.
type userLock struct {
	ch   chan struct{}
	refs int
}

type Manager struct {
	mu          sync.Mutex
	locks       map[string]*userLock
	redisClient xredis.Client
}

// NewManager creates a manager. The redis client is optional, it is only
// needed when several instances of the engine write the same database.
func NewManager(redisClient xredis.Client) *Manager {
	return &Manager{
		locks:       map[string]*userLock{},
		redisClient: redisClient,
	}
}

// Do runs fn inside a database transaction while holding the scope of the
// user. A nested Do of the same user on the context passed to fn reuses the
// held scope and runs in a savepoint.
func (m *Manager) Do(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	if isHeld(ctx, userID) {
		return xcontext.Transaction(ctx, fn)
	}

	unlock, err := m.lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	if m.redisClient != nil {
		release, err := m.acquireToken(ctx, userID)
		if err != nil {
			return err
		}
		defer release()
	}

	return xcontext.Transaction(withHeld(ctx, userID), fn)
}

func (m *Manager) lock(ctx context.Context, userID string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &userLock{ch: make(chan struct{}, 1)}
		m.locks[userID] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		m.unref(userID, l)
		return nil, errorx.New(errorx.Unavailable, "Timeout while waiting for the user scope")
	}

	return func() {
		<-l.ch
		m.unref(userID, l)
	}, nil
}

func (m *Manager) unref(userID string, l *userLock) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, userID)
	}
}

func (m *Manager) acquireToken(ctx context.Context, userID string) (func(), error) {
	key := common.RedisKeyUserScope(userID)
	token := uuid.NewString()
	ttl := xcontext.Configs(ctx).Redis.LockTTL.Std()

	for {
		ok, err := m.redisClient.SetNX(ctx, key, token, ttl)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot acquire scope token of user %s: %v", userID, err)
			return nil, errorx.Unknown
		}

		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errorx.New(errorx.Unavailable, "Timeout while waiting for the user scope")
		case <-time.After(tokenRetryInterval):
		}
	}

	return func() {
		// The request context may be cancelled already.
		if _, err := m.redisClient.DelIfEqual(context.Background(), key, token); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot release scope token of user %s: %v", userID, err)
		}
	}, nil
}

func isHeld(ctx context.Context, userID string) bool {
	held, ok := ctx.Value(heldUsersKey{}).(map[string]struct{})
	if !ok {
		return false
	}

	_, ok = held[userID]
	return ok
}

func withHeld(ctx context.Context, userID string) context.Context {
	held, _ := ctx.Value(heldUsersKey{}).(map[string]struct{})
	copied := make(map[string]struct{}, len(held)+1)
	for k := range held {
		copied[k] = struct{}{}
	}
	copied[userID] = struct{}{}

	return context.WithValue(ctx, heldUsersKey{}, copied)
}
