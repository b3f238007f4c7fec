package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/stagelink/stagelink-backend/internal/contracts"
	"github.com/stagelink/stagelink-backend/pkg/logger"
)

const defaultSweepBatchSize = 100

type contractSweeper interface {
	SweepExpired(ctx context.Context, now time.Time, limit int) ([]contracts.SweepResult, error)
}

// ContractDeadlineJobParams configure the signing deadline sweep.
type ContractDeadlineJobParams struct {
	Logger    *logger.Logger
	Sweeper   contractSweeper
	BatchSize int
}

// NewContractDeadlineJob builds the job that voids contracts whose 48h
// signing window elapsed and cancels their bookings.
func NewContractDeadlineJob(params ContractDeadlineJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("contract sweeper required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &contractDeadlineJob{
		logg:      params.Logger,
		sweeper:   params.Sweeper,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type contractDeadlineJob struct {
	logg      *logger.Logger
	sweeper   contractSweeper
	batchSize int
	now       func() time.Time
}

func (j *contractDeadlineJob) Name() string { return "contract-deadline" }

func (j *contractDeadlineJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	results, err := j.sweeper.SweepExpired(ctx, now, j.batchSize)
	if err != nil {
		return fmt.Errorf("contract deadline sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"voided": len(results)})
	j.logg.Info(logCtx, "contract deadline sweep complete")
	return nil
}
