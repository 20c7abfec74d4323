package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/nagyist/reactive-kafka/application"
	"github.com/nagyist/reactive-kafka/config"
	"github.com/nagyist/reactive-kafka/config/source/file"
	"github.com/nagyist/reactive-kafka/kafka"
	"github.com/nagyist/reactive-kafka/kafka/driver"
	"github.com/nagyist/reactive-kafka/kafka/driver/auditlog"
	"github.com/nagyist/reactive-kafka/logger"
	"github.com/nagyist/reactive-kafka/pgrepo"
)

func main() {
	log, err := logger.New(
		logger.WithLevel(logger.LevelDebug),
		logger.WithDevelopmentConfig(),
	)
	die(err)

	ctx := context.Background()

	start := time.Now()
	log.Debug(ctx, "start")
	defer func() { log.Debug(ctx, "stop", "in", time.Since(start)) }()

	var cfg struct {
		DB             pgrepo.Config `yaml:"db"`
		MessagesDriver driver.Config `yaml:"messages_driver"`
	}
	die(config.New().With(file.YAML("config.yaml")).Scan(&cfg))

	db, err := pgrepo.New(pgrepo.WithLogger(log.New("pgrepo")), pgrepo.WithConfig(cfg.DB))
	die(err)

	messagesPublisher, err := newPublisher(cfg.MessagesDriver.Brokers)
	die(err)

	sink := auditlog.NewSink(auditlog.New(db.Master), func(err error) {
		log.Warn(ctx, "audit write failed", "err", err)
	})

	messagesDriver, err := driver.New(
		driver.WithLogger(log.New("driver")),
		driver.WithConfig(cfg.MessagesDriver),
		driver.WithAuditSink(sink),
	)
	die(err)

	app, err := application.New(
		application.WithLogger(log.New("application")),
		application.WithName("main"),
		application.WithComponents(
			application.NewLifecycleComponent("db", db),
			application.NewLifecycleComponent("driver", messagesDriver),
			application.NewLifecycleComponent("publisher", messagesPublisher),
		),
	)
	die(err)

	go runOrdersConsumer(ctx, log.New("orders-consumer"), messagesDriver)

	go func() {
		time.Sleep(time.Second)
		messagesPublisher.Produce(ctx, kafka.Message{Topic: "orders", Key: []byte("sample key"), Value: []byte("sample value")},
			func(_ *kafka.Message, err error) {
				if err != nil {
					log.Warn(ctx, "sample produce failed", "err", err)
				}
			})
	}()

	die(app.Run(ctx))
}

// runOrdersConsumer is a single downstream demand-pull loop: it assigns
// itself partition 0 of "orders", then alternates RequestMessages with
// processing whatever comes back, re-issuing demand once it's done. A
// real deployment runs many of these, independently, against the one
// shared driver.
func runOrdersConsumer(ctx context.Context, log interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
}, d *driver.Driver) {
	tp := driver.TopicPartition{Topic: "orders", Partition: 0}
	d.Assign([]driver.TopicPartition{tp})

	replies := make(chan driver.Envelope, 1)
	done := make(chan struct{})
	requester := driver.Requester{Replies: replies, Done: done}

	for {
		d.RequestMessages([]driver.TopicPartition{tp}, requester)

		select {
		case env := <-replies:
			switch e := env.(type) {
			case driver.MessagesEnvelope:
				it := e.Records()
				for {
					rec, ok := it.Next()
					if !ok {
						break
					}
					log.Info(ctx, "consumed record", "topic", rec.Topic, "partition", rec.Partition, "offset", rec.Offset)
				}
			case driver.FailureEnvelope:
				log.Warn(ctx, "request failed", "err", e.Err)
				if _, stopping := e.Err.(driver.StoppingError); stopping {
					return
				}
			}
		case <-ctx.Done():
			close(done)
			return
		}
	}
}

func die(args ...any) {
	if len(args) == 0 {
		return
	}
	if err, ok := args[len(args)-1].(error); ok && err != nil {
		_, file, line, _ := runtime.Caller(1)
		fmt.Printf("%s:%d: %s", file, line, err.Error())
		os.Exit(1)
	}
}
