package reports

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/ledger"
	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
	"github.com/ledgerbook/ledgerbook/internal/platform/sheets"
)

type fixture struct {
	store   *sheets.MemoryStore
	ledger  *ledger.Service
	reports *Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := sheets.NewMemoryStore()
	tables := sheets.NewTables(store, nil, nil, "")
	require.NoError(t, tables.EnsureTab(ctx, ledger.Tab, ledger.Header))
	require.NoError(t, tables.EnsureTab(ctx, Tab, Header))

	clock := func() time.Time { return time.Date(2024, 5, 2, 18, 0, 0, 0, time.UTC) }
	led := ledger.NewService(tables, nil, nil, time.UTC)
	led.SetClock(clock)
	rep := NewService(tables, nil, nil, time.UTC)
	rep.SetClock(clock)
	return fixture{store: store, ledger: led, reports: rep}
}

func (f fixture) addEntry(t *testing.T, name string) ledger.Entry {
	t.Helper()
	e, err := f.ledger.Upsert(context.Background(), ledger.UpsertRequest{
		Name:      name,
		Purchase:  ledger.NewNumber("10"),
		RatePerPC: ledger.NewNumber("2"),
	})
	require.NoError(t, err)
	return e
}

func tabTitles(t *testing.T, store sheets.Store) []string {
	t.Helper()
	tabs, err := store.Tabs(context.Background())
	require.NoError(t, err)
	titles := make([]string, len(tabs))
	for i, tab := range tabs {
		titles[i] = tab.Title
	}
	return titles
}

func TestSubmitSnapshotsCurrentData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEntry(t, "Rahim")
	f.addEntry(t, "Karim")

	report, err := f.reports.Submit(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", report.ReportDate)
	assert.Equal(t, "2024-05-02", report.SheetTabName)
	assert.Equal(t, "2024-05-02T18:00:00.000Z", report.CreatedAt)
	assert.Contains(t, tabTitles(t, f.store), "2024-05-02")

	detail, err := f.reports.Get(ctx, report.ReportID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Header, detail.Header)
	require.Len(t, detail.Data, 2)
	assert.Equal(t, "Rahim", detail.Data[0]["name"])
	assert.Equal(t, "20.00", detail.Data[0]["total"])
}

func TestSubmitOverwritesSameDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEntry(t, "first")

	first, err := f.reports.Submit(ctx, "2024-05-01")
	require.NoError(t, err)
	f.addEntry(t, "second")
	second, err := f.reports.Submit(ctx, "2024-05-01")
	require.NoError(t, err)
	assert.NotEqual(t, first.ReportID, second.ReportID)

	all, err := f.reports.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, second.ReportID, all[0].ReportID)

	_, err = f.reports.Get(ctx, first.ReportID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	detail, err := f.reports.Get(ctx, second.ReportID)
	require.NoError(t, err)
	assert.Len(t, detail.Data, 2)
}

func TestSubmitRejectsMalformedDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.reports.Submit(context.Background(), "2024-13-40")
	var verr *ledger.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Date must be in YYYY-MM-DD format.", verr.Fields["date"])
}

func TestListFiltersByMonthNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, d := range []string{"2024-04-30", "2024-05-01", "2024-05-03", "2024-05-02"} {
		_, err := f.reports.Submit(ctx, d)
		require.NoError(t, err)
	}

	res, err := f.reports.List(ctx, ListParams{Month: "2024-05"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 7, res.Limit)
	require.Len(t, res.Data, 3)
	assert.Equal(t, "2024-05-03", res.Data[0].ReportDate)
	assert.Equal(t, "2024-05-01", res.Data[2].ReportDate)

	res, err = f.reports.List(ctx, ListParams{Page: 2, Limit: 3})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "2024-04-30", res.Data[0].ReportDate)
}

func TestListClampsHugePageAndLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.reports.Submit(ctx, "2024-05-01")
	require.NoError(t, err)

	res, err := f.reports.List(ctx, ListParams{Page: 2, Limit: math.MaxInt})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1000, res.Limit)
	assert.Empty(t, res.Data)

	res, err = f.reports.List(ctx, ListParams{Page: math.MaxInt})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
}

func TestBetweenSpansMonths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEntry(t, "Rahim")
	for _, d := range []string{"2024-05-02", "2024-04-29", "2024-06-01"} {
		_, err := f.reports.Submit(ctx, d)
		require.NoError(t, err)
	}

	details, err := f.reports.Between(ctx, "2024-04-01", "2024-05-31")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "2024-05-02", details[0].Report.ReportDate)
	assert.Equal(t, "2024-04-29", details[1].Report.ReportDate)
}

func TestDeleteRemovesTabAndRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	report, err := f.reports.Submit(ctx, "2024-05-01")
	require.NoError(t, err)

	require.NoError(t, f.reports.Delete(ctx, report.ReportID))
	assert.NotContains(t, tabTitles(t, f.store), "2024-05-01")
	all, err := f.reports.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.ErrorIs(t, f.reports.Delete(ctx, report.ReportID), httpx.ErrNotFound)
}

func TestClearAllKeepsNonReportTabs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.store.AddTab(ctx, "Notes")
	require.NoError(t, err)
	for _, d := range []string{"2024-05-01", "2024-05-02"} {
		_, err := f.reports.Submit(ctx, d)
		require.NoError(t, err)
	}

	removed, err := f.reports.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.ElementsMatch(t, []string{ledger.Tab, Tab, "Notes"}, tabTitles(t, f.store))

	values, err := f.store.Read(ctx, Tab)
	require.NoError(t, err)
	assert.Equal(t, [][]string{Header}, values)
}
