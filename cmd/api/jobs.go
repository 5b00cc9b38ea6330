package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weekly-attendance-api/internal/dto"
	"github.com/noah-isme/weekly-attendance-api/pkg/jobs"
)

const (
	jobArchiveSweep = "archive_sweep"
	jobPolicyReload = "policy_reload"
)

type sweeper interface {
	Sweep(ctx context.Context) (*dto.ArchiveSweepResponse, error)
}

type policyReloader interface {
	Reload(ctx context.Context) (bool, error)
}

func scheduledJob(jobType string) func(time.Time) jobs.Job {
	return func(tick time.Time) jobs.Job {
		return jobs.Job{ID: fmt.Sprintf("%s-%d", jobType, tick.Unix()), Type: jobType}
	}
}

func maintenanceHandler(submissions sweeper, policies policyReloader, logr *zap.Logger) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		switch job.Type {
		case jobArchiveSweep:
			res, err := submissions.Sweep(ctx)
			if err != nil {
				return err
			}
			if res.ArchivedCount > 0 {
				logr.Info("archive sweep finished",
					zap.String("job_id", job.ID),
					zap.Int("archived", res.ArchivedCount),
					zap.String("current_week", res.CurrentWeek),
				)
			}
			return nil
		case jobPolicyReload:
			_, err := policies.Reload(ctx)
			return err
		default:
			return fmt.Errorf("unknown job type %q", job.Type)
		}
	}
}
