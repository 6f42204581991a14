package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ledgerbook/ledgerbook/internal/ledger"
	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
	"github.com/ledgerbook/ledgerbook/internal/platform/sheets"
	"github.com/ledgerbook/ledgerbook/internal/shared"
)

const (
	defaultLimit = 7
	maxLimit     = 1000
)

// Service implements saved report operations.
type Service struct {
	tables   *sheets.Tables
	validate *validator.Validate
	audit    ledger.Auditor
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewService constructs the report service. loc decides the default
// report date.
func NewService(tables *sheets.Tables, audit ledger.Auditor, logger *slog.Logger, loc *time.Location) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		tables:   tables,
		validate: validator.New(),
		audit:    audit,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// List returns saved reports newest first.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	all, err := s.All(ctx)
	if err != nil {
		return ListResult{}, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	month := strings.TrimSpace(params.Month)
	filtered := make([]Report, 0, len(all))
	for _, r := range all {
		if month == "" || strings.HasPrefix(r.ReportDate, month) {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ReportDate > filtered[j].ReportDate
	})

	p := shared.NewPagination(params.Page, limit, len(filtered))
	return ListResult{
		Data:  shared.Paginate(filtered, p),
		Total: len(filtered),
		Page:  p.Page,
		Limit: p.PerPage,
	}, nil
}

// All returns every saved report in sheet order.
func (s *Service) All(ctx context.Context) ([]Report, error) {
	table, err := s.tables.Read(ctx, Tab)
	return toReports(table, err)
}

// Submit copies Current Data into the tab named after date, replacing an
// existing snapshot of the same day. An empty date means today.
func (s *Service) Submit(ctx context.Context, date string) (Report, error) {
	date = strings.TrimSpace(date)
	if err := s.validate.Var(date, "omitempty,datetime=2006-01-02"); err != nil {
		return Report{}, &ledger.ValidationError{Fields: map[string]string{"date": "Date must be in YYYY-MM-DD format."}}
	}
	now := s.now()
	if date == "" {
		date = now.In(s.loc).Format("2006-01-02")
	}
	report := Report{
		ReportID:     uuid.NewString(),
		ReportDate:   date,
		SheetTabName: date,
		CreatedAt:    now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	rows := 0
	_, err := s.tables.Mutate(ctx, func(ctx context.Context) error {
		store := s.tables.Store()
		tabs, err := store.Tabs(ctx)
		if err != nil {
			return fmt.Errorf("list tabs: %w", err)
		}
		if tab, ok := sheets.FindTab(tabs, report.SheetTabName); ok {
			if err := store.DeleteTabs(ctx, tab.ID); err != nil {
				return fmt.Errorf("delete tab %s: %w", tab.Title, err)
			}
		}
		if _, err := store.AddTab(ctx, report.SheetTabName); err != nil {
			return fmt.Errorf("add tab %s: %w", report.SheetTabName, err)
		}
		current, err := s.tables.ReadFresh(ctx, ledger.Tab)
		if err != nil && !errors.Is(err, sheets.ErrTabNotFound) {
			return fmt.Errorf("read %s: %w", ledger.Tab, err)
		}
		rows = len(current.Rows)
		if err := s.tables.Write(ctx, report.SheetTabName, ledger.Header, current.Rows); err != nil {
			return fmt.Errorf("write tab %s: %w", report.SheetTabName, err)
		}

		existing, err := s.freshReports(ctx)
		if err != nil {
			return err
		}
		kept := make([]Report, 0, len(existing)+1)
		for _, r := range existing {
			if r.SheetTabName != report.SheetTabName {
				kept = append(kept, r)
			}
		}
		kept = append(kept, report)
		return s.writeReports(ctx, kept)
	})
	if err != nil {
		return Report{}, fmt.Errorf("submit report: %w", err)
	}
	s.logger.Info("report submitted", slog.String("date", report.ReportDate), slog.Int("rows", rows))
	s.record(ctx, "report.submit", report.ReportID, map[string]any{"date": report.ReportDate, "rows": rows})
	return report, nil
}

// Get returns a report and the rows of its tab. A missing tab yields no
// rows.
func (s *Service) Get(ctx context.Context, reportID string) (Detail, error) {
	all, err := s.All(ctx)
	if err != nil {
		return Detail{}, err
	}
	report, ok := find(all, reportID)
	if !ok {
		return Detail{}, httpx.NotFound("Report not found")
	}
	return s.detail(ctx, report)
}

// Between returns the reports dated within [from, to] with their rows,
// oldest first.
func (s *Service) Between(ctx context.Context, from, to string) ([]Detail, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	selected := make([]Report, 0, len(all))
	for _, r := range all {
		if r.ReportDate >= from && r.ReportDate <= to {
			selected = append(selected, r)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].ReportDate > selected[j].ReportDate
	})
	out := make([]Detail, 0, len(selected))
	for _, r := range selected {
		d, err := s.detail(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Delete removes a report and its tab.
func (s *Service) Delete(ctx context.Context, reportID string) error {
	_, err := s.tables.Mutate(ctx, func(ctx context.Context) error {
		existing, err := s.freshReports(ctx)
		if err != nil {
			return err
		}
		report, ok := find(existing, reportID)
		if !ok {
			return httpx.NotFound("Report not found")
		}
		store := s.tables.Store()
		tabs, err := store.Tabs(ctx)
		if err != nil {
			return fmt.Errorf("list tabs: %w", err)
		}
		if tab, ok := sheets.FindTab(tabs, report.SheetTabName); ok {
			if err := store.DeleteTabs(ctx, tab.ID); err != nil {
				return fmt.Errorf("delete tab %s: %w", tab.Title, err)
			}
		}
		kept := make([]Report, 0, len(existing))
		for _, r := range existing {
			if r.ReportID != reportID {
				kept = append(kept, r)
			}
		}
		return s.writeReports(ctx, kept)
	})
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	s.record(ctx, "report.delete", reportID, nil)
	return nil
}

// ClearAll deletes every dated tab and empties the metadata tab. It
// returns the number of tabs removed.
func (s *Service) ClearAll(ctx context.Context) (int, error) {
	removed := 0
	_, err := s.tables.Mutate(ctx, func(ctx context.Context) error {
		store := s.tables.Store()
		tabs, err := store.Tabs(ctx)
		if err != nil {
			return fmt.Errorf("list tabs: %w", err)
		}
		ids := make([]int64, 0, len(tabs))
		for _, tab := range tabs {
			if reportTab.MatchString(tab.Title) {
				ids = append(ids, tab.ID)
			}
		}
		if len(ids) > 0 {
			if err := store.DeleteTabs(ctx, ids...); err != nil {
				return fmt.Errorf("delete report tabs: %w", err)
			}
		}
		removed = len(ids)
		return s.writeReports(ctx, nil)
	})
	if err != nil {
		return 0, fmt.Errorf("clear reports: %w", err)
	}
	s.record(ctx, "report.clear_all", "*", map[string]any{"tabs": removed})
	return removed, nil
}

func (s *Service) detail(ctx context.Context, report Report) (Detail, error) {
	table, err := s.tables.Read(ctx, report.SheetTabName)
	if errors.Is(err, sheets.ErrTabNotFound) {
		return Detail{Report: report, Header: ledger.Header, Data: []sheets.Record{}}, nil
	}
	if err != nil {
		return Detail{}, fmt.Errorf("read tab %s: %w", report.SheetTabName, err)
	}
	header := table.Header
	if len(header) == 0 {
		header = ledger.Header
	}
	return Detail{Report: report, Header: header, Data: table.Rows}, nil
}

func (s *Service) freshReports(ctx context.Context) ([]Report, error) {
	table, err := s.tables.ReadFresh(ctx, Tab)
	return toReports(table, err)
}

func (s *Service) writeReports(ctx context.Context, reports []Report) error {
	rows := make([]sheets.Record, len(reports))
	for i, r := range reports {
		rows[i] = r.record()
	}
	if err := s.tables.Write(ctx, Tab, Header, rows); err != nil {
		return fmt.Errorf("write %s: %w", Tab, err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "report", EntityID: id, Meta: meta})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

func toReports(table sheets.Table, err error) ([]Report, error) {
	if errors.Is(err, sheets.ErrTabNotFound) {
		return []Report{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", Tab, err)
	}
	out := make([]Report, 0, len(table.Rows))
	for _, rec := range table.Rows {
		out = append(out, reportFromRecord(rec))
	}
	return out, nil
}

func find(reports []Report, id string) (Report, bool) {
	for _, r := range reports {
		if r.ReportID == id {
			return r, true
		}
	}
	return Report{}, false
}
