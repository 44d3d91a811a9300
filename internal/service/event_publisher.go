package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	EventStudentStaged      = "STUDENT_STAGED"
	EventStudentTransferred = "STUDENT_TRANSFERRED"
)

const DefaultEventChannel = "assessment-results.events"

type Event struct {
	Type         string    `json:"eventType"`
	AssessmentID string    `json:"assessmentId"`
	StudentID    string    `json:"studentId,omitempty"`
	Pen          string    `json:"pen"`
	RecordID     string    `json:"recordId"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// RedisPublisher publishes events as JSON on a redis pub/sub channel.
type RedisPublisher struct {
	Redis   *redis.Client
	Channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &RedisPublisher{Redis: rdb, Channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Redis.Publish(ctx, p.Channel, payload).Err()
}
