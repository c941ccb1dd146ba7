package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/switchboard/internal/health"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/registry"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// runDigestLoop emits a one-line health digest on the configured cron
// schedule until ctx is cancelled.
func runDigestLoop(ctx context.Context, db *gorm.DB, reg *registry.Registry, schedule string, out io.Writer) {
	if nextCronDuration(schedule) == 0 {
		log.Printf("daemon: invalid digest schedule %q, digest disabled", schedule)
		return
	}

	for {
		d := nextCronDuration(schedule)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d):
		}

		agg, err := health.Rebuild(db, reg.AgentIDs())
		if err != nil {
			log.Printf("daemon: digest: %v", err)
			continue
		}
		snap := agg.Snapshot()
		fmt.Fprintf(out, "[digest %s] %d healthy, %d degraded, %d unreachable\n",
			time.Now().Format("15:04:05"), snap.Healthy, snap.Degraded, snap.Unreachable)

		for _, h := range snap.Agents {
			if h.Status != models.StatusHealthy {
				fmt.Fprintf(out, "[digest] %s is %s (%d consecutive failures)\n",
					h.AgentID, h.Status, h.ConsecutiveFailures)
			}
		}
	}
}
