package comments

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultPollInterval = 30 * time.Second

// Poll fetches the conversation immediately and then every interval until
// ctx is done, handing each successful result to fn. Fetch errors are
// logged and polling continues.
func (c *Client) Poll(ctx context.Context, escrowID, milestoneID string, interval time.Duration, fn func([]Comment)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	log := logrus.WithFields(logrus.Fields{
		"escrow":    escrowID,
		"milestone": milestoneID,
	})

	fetch := func() {
		list, err := c.Comments(ctx, escrowID, milestoneID)
		if err != nil {
			if ctx.Err() == nil {
				log.WithError(err).Warn("failed to load comments")
			}
			return
		}
		fn(list)
	}

	fetch()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fetch()
		}
	}
}
