// Package export renders saved reports as XLSX workbooks or PDF documents.
package export

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ledgerbook/ledgerbook/internal/ledger"
	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
	"github.com/ledgerbook/ledgerbook/internal/platform/sheets"
	"github.com/ledgerbook/ledgerbook/internal/reports"
)

// Format selects the output document type.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrRendererUnavailable is returned for PDF exports when no renderer is
// configured.
var ErrRendererUnavailable = errors.New("export: pdf renderer unavailable")

// ParseFormat accepts pdf (the default), excel and its alias xlsx.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "pdf":
		return FormatPDF, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	default:
		return "", &ledger.ValidationError{Fields: map[string]string{"format": "Format must be pdf or excel."}}
	}
}

func (f Format) extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return "pdf"
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// RangeRequest selects the reports dated within [From, To].
type RangeRequest struct {
	From   string `json:"from" validate:"required,datetime=2006-01-02"`
	To     string `json:"to" validate:"required,datetime=2006-01-02"`
	Format string `json:"format"`
}

// Service builds export files from saved reports.
type Service struct {
	reports  *reports.Service
	renderer PDFRenderer
	validate *validator.Validate
	tpl      *template.Template
}

// NewService constructs the export service. renderer may be nil, in which
// case only Excel exports succeed.
func NewService(reportSvc *reports.Service, renderer PDFRenderer) (*Service, error) {
	tpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Service{reports: reportSvc, renderer: renderer, validate: validator.New(), tpl: tpl}, nil
}

// Renderer returns the configured PDF renderer.
func (s *Service) Renderer() PDFRenderer {
	return s.renderer
}

// ExportReport renders one saved report.
func (s *Service) ExportReport(ctx context.Context, reportID string, format Format) (File, error) {
	detail, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return File{}, err
	}
	if len(detail.Data) == 0 {
		return File{}, httpx.NotFound("No data in report")
	}
	name := fmt.Sprintf("report_%s.%s", detail.Report.ReportDate, format.extension())
	title := "Report: " + detail.Report.ReportDate
	return s.render(ctx, format, name, "Report", title, detail.Header, detail.Data, false)
}

// ExportRange renders every report dated within the range as one
// document, tagging each row with its report date.
func (s *Service) ExportRange(ctx context.Context, req RangeRequest) (File, error) {
	if err := s.validateRange(req); err != nil {
		return File{}, err
	}
	format, err := ParseFormat(req.Format)
	if err != nil {
		return File{}, err
	}
	details, err := s.reports.Between(ctx, req.From, req.To)
	if err != nil {
		return File{}, err
	}

	var header []string
	var rows []sheets.Record
	for _, d := range details {
		if header == nil && len(d.Data) > 0 {
			header = append(append([]string(nil), d.Header...), "reportDate")
		}
		for _, rec := range d.Data {
			row := make(sheets.Record, len(rec)+1)
			for k, v := range rec {
				row[k] = v
			}
			row["reportDate"] = d.Report.ReportDate
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return File{}, httpx.NotFound("No data in range")
	}
	name := fmt.Sprintf("reports_%s_to_%s.%s", req.From, req.To, format.extension())
	title := fmt.Sprintf("Reports: %s to %s", req.From, req.To)
	return s.render(ctx, format, name, "Reports", title, header, rows, true)
}

func (s *Service) validateRange(req RangeRequest) error {
	fields := map[string]string{}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "From":
				fields["from"] = "From must be in YYYY-MM-DD format."
			case "To":
				fields["to"] = "To must be in YYYY-MM-DD format."
			}
		}
	} else if req.From > req.To {
		fields["to"] = "To must not be before From."
	}
	if len(fields) > 0 {
		return &ledger.ValidationError{Fields: fields}
	}
	return nil
}

func (s *Service) render(ctx context.Context, format Format, name, sheet, title string, header []string, rows []sheets.Record, showTotal bool) (File, error) {
	if format == FormatExcel {
		body, err := RenderXLSX(sheet, header, rows)
		if err != nil {
			return File{}, fmt.Errorf("render xlsx: %w", err)
		}
		return File{Name: name, ContentType: contentTypeXLSX, Body: body}, nil
	}
	if s.renderer == nil {
		return File{}, ErrRendererUnavailable
	}
	html, err := renderHTML(s.tpl, buildView(title, header, rows, showTotal))
	if err != nil {
		return File{}, err
	}
	body, err := s.renderer.RenderHTML(ctx, html)
	if err != nil {
		return File{}, fmt.Errorf("render pdf: %w", err)
	}
	return File{Name: name, ContentType: contentTypePDF, Body: body}, nil
}
