package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/weekly-attendance-api/internal/dto"
	"github.com/noah-isme/weekly-attendance-api/pkg/jobs"
)

type sweeperStub struct {
	calls int
	err   error
}

func (s *sweeperStub) Sweep(ctx context.Context) (*dto.ArchiveSweepResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ArchiveSweepResponse{ArchivedCount: 2, CurrentWeek: "2025-W11"}, nil
}

type reloaderStub struct {
	calls int
}

func (r *reloaderStub) Reload(ctx context.Context) (bool, error) {
	r.calls++
	return false, nil
}

func TestMaintenanceHandlerDispatch(t *testing.T) {
	sweeps := &sweeperStub{}
	reloads := &reloaderStub{}
	handle := maintenanceHandler(sweeps, reloads, zap.NewNop())

	require.NoError(t, handle(context.Background(), jobs.Job{Type: jobArchiveSweep}))
	require.NoError(t, handle(context.Background(), jobs.Job{Type: jobPolicyReload}))
	assert.Equal(t, 1, sweeps.calls)
	assert.Equal(t, 1, reloads.calls)

	assert.Error(t, handle(context.Background(), jobs.Job{Type: "unknown"}))
}

func TestMaintenanceHandlerSurfacesSweepFailure(t *testing.T) {
	sweeps := &sweeperStub{err: errors.New("db down")}
	handle := maintenanceHandler(sweeps, &reloaderStub{}, zap.NewNop())

	assert.EqualError(t, handle(context.Background(), jobs.Job{Type: jobArchiveSweep}), "db down")
}

func TestScheduledJobIDs(t *testing.T) {
	tick := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	job := scheduledJob(jobArchiveSweep)(tick)
	assert.Equal(t, jobArchiveSweep, job.Type)
	assert.Equal(t, "archive_sweep-1741564800", job.ID)
}
