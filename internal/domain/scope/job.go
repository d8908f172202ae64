package scope

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/progression/internal/common"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/questx-lab/progression/pkg/xredis"
)

// JobGuard allows at most one batch job per user at a time. Unlike Manager,
// it never waits: a second job of the same user is rejected.
type JobGuard struct {
	running     *xsync.MapOf[string, struct{}]
	redisClient xredis.Client
	ttl         time.Duration
}

func NewJobGuard(redisClient xredis.Client, ttl time.Duration) *JobGuard {
	return &JobGuard{
		running:     xsync.NewMapOf[struct{}](),
		redisClient: redisClient,
		ttl:         ttl,
	}
}

type heldJobKey struct{}

// TryAcquire marks the job of the user as running. The returned function
// must be called when the job finishes. A job running on the returned context
// can call TryAcquire again for the same user, for example an analysis which
// mines patterns then synthesizes insights.
func (g *JobGuard) TryAcquire(ctx context.Context, userID string) (context.Context, func(), error) {
	if held, ok := ctx.Value(heldJobKey{}).(string); ok && held == userID {
		return ctx, func() {}, nil
	}

	if _, loaded := g.running.LoadOrStore(userID, struct{}{}); loaded {
		return nil, nil, errorx.New(errorx.TooManyRequests, "An analysis of this user is already running")
	}

	jobCtx := context.WithValue(ctx, heldJobKey{}, userID)
	if g.redisClient == nil {
		return jobCtx, func() { g.running.Delete(userID) }, nil
	}

	key := common.RedisKeyMiningJob(userID)
	token := uuid.NewString()
	ok, err := g.redisClient.SetNX(ctx, key, token, g.ttl)
	if err != nil {
		g.running.Delete(userID)
		xcontext.Logger(ctx).Errorf("Cannot acquire job token of user %s: %v", userID, err)
		return nil, nil, errorx.Unknown
	}

	if !ok {
		g.running.Delete(userID)
		return nil, nil, errorx.New(errorx.TooManyRequests, "An analysis of this user is already running")
	}

	return jobCtx, func() {
		if _, err := g.redisClient.DelIfEqual(context.Background(), key, token); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot release job token of user %s: %v", userID, err)
		}
		g.running.Delete(userID)
	}, nil
}
