package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/ledgerbook/ledgerbook/internal/jobs"
	"github.com/ledgerbook/ledgerbook/internal/ledger"
	"github.com/ledgerbook/ledgerbook/internal/reports"
)

type fakeSubmitter struct {
	dates []string
	err   error
}

func (f *fakeSubmitter) Submit(_ context.Context, date string) (reports.Report, error) {
	f.dates = append(f.dates, date)
	if f.err != nil {
		return reports.Report{}, f.err
	}
	d := date
	if d == "" {
		d = "2024-05-02"
	}
	return reports.Report{ReportID: "r-1", ReportDate: d, SheetTabName: d}, nil
}

func (f *fakeSubmitter) Get(context.Context, string) (reports.Detail, error) {
	return reports.Detail{}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSnapshotJobSubmitsReport(t *testing.T) {
	sub := &fakeSubmitter{}
	job := NewSnapshotJob(sub, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewReportSnapshotTask(SnapshotPayload{Date: "2024-05-01"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskReportSnapshot, nil)))
	assert.Equal(t, []string{"2024-05-01", ""}, sub.dates)
}

func TestSnapshotJobErrors(t *testing.T) {
	job := NewSnapshotJob(&fakeSubmitter{}, quietLogger(), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskReportSnapshot, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	invalid := &ledger.ValidationError{Fields: map[string]string{"date": "Date must be in YYYY-MM-DD format."}}
	job = NewSnapshotJob(&fakeSubmitter{err: invalid}, quietLogger(), nil)
	task, err := NewReportSnapshotTask(SnapshotPayload{Date: "bad"})
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	transient := errors.New("sheets unavailable")
	job = NewSnapshotJob(&fakeSubmitter{err: transient}, quietLogger(), nil)
	err = job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, transient)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	var nilJob *SnapshotJob
	assert.Error(t, nilJob.Handle(context.Background(), task))
}

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, quietLogger()).MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"failed":0}`, rec.Body.String())
}

func TestNewWorkerRegistersCron(t *testing.T) {
	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Logger:    quietLogger(),
		Handlers:  []TaskHandler{{Type: TaskReportSnapshot, Handler: NewSnapshotJob(&fakeSubmitter{}, nil, nil).Handle}},
		Cron:      []CronRegistration{{Spec: "55 23 * * *", Task: asynq.NewTask(TaskReportSnapshot, nil)}},
	})
	require.NoError(t, err)
	assert.NotNil(t, w.scheduler)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Cron:      []CronRegistration{{Spec: "not a cron", Task: asynq.NewTask(TaskReportSnapshot, nil)}},
	})
	assert.Error(t, err)
}

func TestRedisOpt(t *testing.T) {
	opt, err := RedisOpt("127.0.0.1:6379")
	require.NoError(t, err)
	assert.Equal(t, asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}, opt)

	opt, err = RedisOpt("redis://:secret@cache.internal:6380/3")
	require.NoError(t, err)
	client, ok := opt.(asynq.RedisClientOpt)
	require.True(t, ok)
	assert.Equal(t, "cache.internal:6380", client.Addr)
	assert.Equal(t, "secret", client.Password)
	assert.Equal(t, 3, client.DB)

	_, err = RedisOpt(" ")
	assert.Error(t, err)
}
