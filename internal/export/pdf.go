package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/platform/sheets"
	"github.com/ledgerbook/ledgerbook/web"
)

// PDFRenderer converts an HTML document into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// HealthChecker is implemented by renderers that can report readiness.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

const reportTemplate = "ledger_report.html"

type reportView struct {
	Title     string
	Header    []string
	Rows      []rowView
	ShowTotal bool
	Total     decimal.Decimal
}

type rowView struct {
	Cells    []string
	Negative bool
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"amount": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
	}
	tpl, err := template.New(reportTemplate).Funcs(funcMap).ParseFS(web.Templates, "templates/reports/"+reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return tpl, nil
}

func buildView(title string, header []string, rows []sheets.Record, showTotal bool) reportView {
	view := reportView{Title: title, Header: header, ShowTotal: showTotal, Rows: make([]rowView, 0, len(rows))}
	for _, rec := range rows {
		cells := make([]string, len(header))
		for i, col := range header {
			cells[i] = rec[col]
		}
		total, err := decimal.NewFromString(rec["total"])
		if err != nil {
			total = decimal.Zero
		}
		view.Total = view.Total.Add(total)
		view.Rows = append(view.Rows, rowView{Cells: cells, Negative: total.IsNegative()})
	}
	return view
}

func renderHTML(tpl *template.Template, view reportView) (string, error) {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, reportTemplate, view); err != nil {
		return "", fmt.Errorf("render report template: %w", err)
	}
	return buf.String(), nil
}
