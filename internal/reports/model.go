// Package reports snapshots Current Data into dated tabs and keeps their
// metadata in the SavedReports tab.
package reports

import (
	"regexp"

	"github.com/ledgerbook/ledgerbook/internal/platform/sheets"
)

// Tab is the metadata tab.
const Tab = "SavedReports"

// Header is the metadata column layout.
var Header = []string{"reportId", "reportDate", "sheetTabName", "created_at", "downloadLinks"}

// reportTab matches the titles of snapshot tabs.
var reportTab = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Report is one metadata row.
type Report struct {
	ReportID      string `json:"reportId"`
	ReportDate    string `json:"reportDate"`
	SheetTabName  string `json:"sheetTabName"`
	CreatedAt     string `json:"created_at"`
	DownloadLinks string `json:"downloadLinks"`
}

func (r Report) record() sheets.Record {
	return sheets.Record{
		"reportId":      r.ReportID,
		"reportDate":    r.ReportDate,
		"sheetTabName":  r.SheetTabName,
		"created_at":    r.CreatedAt,
		"downloadLinks": r.DownloadLinks,
	}
}

func reportFromRecord(rec sheets.Record) Report {
	return Report{
		ReportID:      rec["reportId"],
		ReportDate:    rec["reportDate"],
		SheetTabName:  rec["sheetTabName"],
		CreatedAt:     rec["created_at"],
		DownloadLinks: rec["downloadLinks"],
	}
}

// Detail is a report together with the rows of its tab.
type Detail struct {
	Report Report          `json:"report"`
	Header []string        `json:"-"`
	Data   []sheets.Record `json:"data"`
}

// ListParams filters saved reports.
type ListParams struct {
	Month string
	Page  int
	Limit int
}

// ListResult is a page of reports.
type ListResult struct {
	Data  []Report `json:"data"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
}

// SubmitRequest is the optional body of a submission.
type SubmitRequest struct {
	Date string `json:"date"`
}
