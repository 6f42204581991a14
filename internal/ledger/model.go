// Package ledger manages Current Data: the live per-customer rows of the
// active period.
package ledger

import "github.com/ledgerbook/ledgerbook/internal/platform/sheets"

// Tab is the spreadsheet tab holding Current Data.
const Tab = "CurrentData"

// Header is the column layout of Current Data and of every report tab.
var Header = []string{
	"id", "name", "purchase", "return", "sell", "rate_per_pc", "net_value",
	"vc", "previous_due", "total", "date", "created_at", "updated_at",
}

// Entry is one customer's row for a day. Values are kept as the strings
// stored in the sheet.
type Entry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Purchase    string `json:"purchase"`
	Return      string `json:"return"`
	Sell        string `json:"sell"`
	RatePerPC   string `json:"rate_per_pc"`
	NetValue    string `json:"net_value"`
	VC          string `json:"vc"`
	PreviousDue string `json:"previous_due"`
	Total       string `json:"total"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Record converts the entry into a sheet record.
func (e Entry) Record() sheets.Record {
	return sheets.Record{
		"id":           e.ID,
		"name":         e.Name,
		"purchase":     e.Purchase,
		"return":       e.Return,
		"sell":         e.Sell,
		"rate_per_pc":  e.RatePerPC,
		"net_value":    e.NetValue,
		"vc":           e.VC,
		"previous_due": e.PreviousDue,
		"total":        e.Total,
		"date":         e.Date,
		"created_at":   e.CreatedAt,
		"updated_at":   e.UpdatedAt,
	}
}

// EntryFromRecord reads an entry from a sheet record.
func EntryFromRecord(r sheets.Record) Entry {
	return Entry{
		ID:          r["id"],
		Name:        r["name"],
		Purchase:    r["purchase"],
		Return:      r["return"],
		Sell:        r["sell"],
		RatePerPC:   r["rate_per_pc"],
		NetValue:    r["net_value"],
		VC:          r["vc"],
		PreviousDue: r["previous_due"],
		Total:       r["total"],
		Date:        r["date"],
		CreatedAt:   r["created_at"],
		UpdatedAt:   r["updated_at"],
	}
}

// Records converts entries into sheet records.
func Records(entries []Entry) []sheets.Record {
	out := make([]sheets.Record, len(entries))
	for i, e := range entries {
		out[i] = e.Record()
	}
	return out
}

// ListParams filters Current Data.
type ListParams struct {
	Date  string
	Page  int
	Limit int
}

// ListResult is a page of entries.
type ListResult struct {
	Data  []Entry `json:"data"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}
