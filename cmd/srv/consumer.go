package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/progression/pkg/kafka"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startConsumer(*cli.Context) error {
	s.loadAll()
	s.loadPublisher()
	s.loadDomains()

	cfg := xcontext.Configs(s.ctx).Kafka
	subscriber, err := kafka.NewSubscriber(
		cfg.GroupID,
		cfg.Addrs,
		[]string{cfg.EventTopic},
		s.intakeDomain.HandleEvent,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	xcontext.Logger(s.ctx).Infof("Start consuming topic %s", cfg.EventTopic)
	go func() {
		<-ctx.Done()
		if err := subscriber.Stop(s.ctx); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot stop subscriber: %v", err)
		}
	}()

	subscriber.Subscribe(ctx)
	return nil
}
