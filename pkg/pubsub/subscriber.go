package pubsub

import (
	"context"
	"time"
)

type SubscribeHandler func(context.Context, *Pack, time.Time) error

type Subscriber interface {
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}
