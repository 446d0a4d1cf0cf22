// Command hold-consumer appends hold lifecycle events from the queue to
// the hold log.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/config"
	"github.com/iliyamo/cowork-booking/internal/queue"
)

func main() {
	cfg := config.LoadConsumer()
	if cfg.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	log := logrus.WithField("app", "hold-consumer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: cfg.AMQPURL, Queue: cfg.HoldQueue, LogDir: cfg.HoldLogDir, Log: log}
	log.WithFields(logrus.Fields{"queue": cfg.HoldQueue, "log_dir": cfg.HoldLogDir}).Info("consuming hold events")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("consumer stopped")
	}
	log.Info("consumer stopped")
}
