package main

import (
	"context"

	"github.com/turtacn/patent-normalizer/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// topicHealthAdapter reports ready while every worker topic is visible on
// the broker.
type topicHealthAdapter struct {
	topics *kafka.TopicManager
	names  []string
}

func (a *topicHealthAdapter) Name() string {
	return "kafka_topics"
}

func (a *topicHealthAdapter) Check(ctx context.Context) error {
	for _, name := range a.names {
		ok, err := a.topics.TopicExists(ctx, name)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New(errors.ErrCodeServiceUnavailable, "topic not found").WithDetail("topic=" + name)
		}
	}
	return nil
}

//Personal.AI order the ending
