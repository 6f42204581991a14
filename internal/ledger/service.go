package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
	"github.com/ledgerbook/ledgerbook/internal/platform/sheets"
	"github.com/ledgerbook/ledgerbook/internal/shared"
)

const (
	defaultLimit = 50
	maxLimit     = 1000

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Auditor records mutations. *shared.AuditLogger satisfies it.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements the Current Data operations.
type Service struct {
	tables   *sheets.Tables
	validate *validator.Validate
	audit    Auditor
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewService constructs the ledger service. loc decides the default date
// of new entries.
func NewService(tables *sheets.Tables, audit Auditor, logger *slog.Logger, loc *time.Location) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		tables:   tables,
		validate: NewValidator(),
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

// Today returns the current date in the service time zone.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

// List returns a page of entries for date, or for the latest date present
// when date is empty.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	entries, err := s.entries(ctx)
	if err != nil {
		return ListResult{}, err
	}
	date := strings.TrimSpace(params.Date)
	if date == "" {
		date = latestDate(entries)
	}
	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Date == date {
			filtered = append(filtered, e)
		}
	}

	p := shared.NewPagination(page, limit, len(filtered))
	return ListResult{
		Data:  shared.Paginate(filtered, p),
		Total: len(filtered),
		Page:  p.Page,
		Limit: p.PerPage,
	}, nil
}

// Upsert validates req and inserts or replaces the entry it describes.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (Entry, error) {
	if err := validateUpsert(s.validate, req); err != nil {
		return Entry{}, err
	}

	var saved Entry
	created := false
	_, err := s.tables.Mutate(ctx, func(ctx context.Context) error {
		entries, err := s.freshEntries(ctx)
		if err != nil {
			return err
		}
		stamp := s.now().UTC().Format(timestampLayout)
		entry := Entry{
			ID:        strings.TrimSpace(req.ID),
			Name:      normalizeName(req.Name),
			Date:      req.Date,
			CreatedAt: stamp,
			UpdatedAt: stamp,
		}
		if entry.Date == "" {
			entry.Date = s.Today()
		}
		Compute(
			req.Purchase.Decimal(),
			req.Return.Decimal(),
			req.RatePerPC.Decimal(),
			req.VC.Decimal(),
			req.PreviousDue.Decimal(),
		).Apply(&entry)

		idx := indexOf(entries, entry.ID)
		if entry.ID == "" || idx < 0 {
			entry.ID = uuid.NewString()
			entries = append(entries, entry)
			created = true
		} else {
			if prev := entries[idx].CreatedAt; prev != "" {
				entry.CreatedAt = prev
			}
			entries[idx] = entry
		}
		saved = entry
		return s.tables.Write(ctx, Tab, Header, Records(entries))
	})
	if err != nil {
		return Entry{}, fmt.Errorf("upsert entry: %w", err)
	}

	action := "ledger.update"
	if created {
		action = "ledger.create"
	}
	s.record(ctx, action, saved.ID, map[string]any{"name": saved.Name, "date": saved.Date, "total": saved.Total})
	return saved, nil
}

// Delete removes the entry with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.tables.Mutate(ctx, func(ctx context.Context) error {
		entries, err := s.freshEntries(ctx)
		if err != nil {
			return err
		}
		idx := indexOf(entries, id)
		if idx < 0 {
			return httpx.NotFound("Not found")
		}
		entries = append(entries[:idx], entries[idx+1:]...)
		return s.tables.Write(ctx, Tab, Header, Records(entries))
	})
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.record(ctx, "ledger.delete", id, nil)
	return nil
}

// Clear blanks the numeric columns of the entry with id.
func (s *Service) Clear(ctx context.Context, id string) (Entry, error) {
	var cleared Entry
	_, err := s.tables.Mutate(ctx, func(ctx context.Context) error {
		entries, err := s.freshEntries(ctx)
		if err != nil {
			return err
		}
		idx := indexOf(entries, id)
		if idx < 0 {
			return httpx.NotFound("Not found")
		}
		clearAmounts(&entries[idx])
		entries[idx].UpdatedAt = s.now().UTC().Format(timestampLayout)
		cleared = entries[idx]
		return s.tables.Write(ctx, Tab, Header, Records(entries))
	})
	if err != nil {
		return Entry{}, fmt.Errorf("clear entry: %w", err)
	}
	s.record(ctx, "ledger.clear", id, nil)
	return cleared, nil
}

func (s *Service) entries(ctx context.Context) ([]Entry, error) {
	table, err := s.tables.Read(ctx, Tab)
	return toEntries(table, err)
}

func (s *Service) freshEntries(ctx context.Context) ([]Entry, error) {
	table, err := s.tables.ReadFresh(ctx, Tab)
	return toEntries(table, err)
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "ledger_entry", EntityID: id, Meta: meta})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

func toEntries(table sheets.Table, err error) ([]Entry, error) {
	if errors.Is(err, sheets.ErrTabNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", Tab, err)
	}
	entries := make([]Entry, 0, len(table.Rows))
	for _, rec := range table.Rows {
		entries = append(entries, EntryFromRecord(rec))
	}
	return entries, nil
}

func indexOf(entries []Entry, id string) int {
	if id == "" {
		return -1
	}
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func latestDate(entries []Entry) string {
	latest := ""
	for _, e := range entries {
		if e.Date > latest {
			latest = e.Date
		}
	}
	return latest
}

// normalizeName trims and composes name so the same customer typed on
// different keyboards lands in one spelling.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
