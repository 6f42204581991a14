package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ledgerbook/ledgerbook/internal/jobs"
	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
	"github.com/ledgerbook/ledgerbook/internal/reports"
)

// Submitter snapshots Current Data. *reports.Service satisfies it.
type Submitter interface {
	Submit(ctx context.Context, date string) (reports.Report, error)
}

// RowCounter reports how many rows a snapshot copied.
type RowCounter interface {
	Get(ctx context.Context, reportID string) (reports.Detail, error)
}

// SnapshotJob submits the daily report.
type SnapshotJob struct {
	Reports Submitter
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewSnapshotJob wires dependencies for the snapshot handler.
func NewSnapshotJob(reportSvc Submitter, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotJob {
	return &SnapshotJob{Reports: reportSvc, Logger: logger, Metrics: metrics}
}

// Handle processes TaskReportSnapshot tasks.
func (j *SnapshotJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Reports == nil {
		return errors.New("report snapshot: handler not configured")
	}
	var payload SnapshotPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.Metrics.Track(TaskReportSnapshot)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.String("date", payload.Date))
	report, err := j.Reports.Submit(ctx, payload.Date)
	if err != nil {
		logger.Error("report snapshot failed", slog.Any("error", err))
		if errors.Is(err, httpx.ErrValidation) {
			return errors.Join(err, asynq.SkipRetry)
		}
		return err
	}

	rows := 0
	if counter, ok := j.Reports.(RowCounter); ok {
		if detail, err := counter.Get(ctx, report.ReportID); err == nil {
			rows = len(detail.Data)
		}
	}
	j.Metrics.ObserveSnapshot(rows)
	logger.Info("report snapshot stored", slog.String("report_id", report.ReportID), slog.String("tab", report.SheetTabName), slog.Int("rows", rows))
	return nil
}

func (j *SnapshotJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
