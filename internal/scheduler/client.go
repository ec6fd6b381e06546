package scheduler

import (
	"context"
	"fmt"
	"time"

	"credsaathi_backend/platform/config"

	"github.com/hibiken/asynq"
)

type Client struct {
	client *asynq.Client
	queue  string
}

// SlipRescanScheduler is the slice of the client the loan service needs to
// retry salary slip extraction later.
type SlipRescanScheduler interface {
	ScheduleSlipRescan(ctx context.Context, payload SlipRescanPayload, runAt time.Time) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	addr := cfg.GetRedisAddr()
	if addr == "" {
		return nil, fmt.Errorf("redis addr not configured")
	}

	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: addr}),
		queue:  "default",
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) ScheduleSlipRescan(ctx context.Context, payload SlipRescanPayload, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewSlipRescanTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}
