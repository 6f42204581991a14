// Package sheets treats a spreadsheet as a small table store: every tab is
// a table whose first row is the header.
package sheets

import (
	"context"
	"errors"
)

// ErrTabNotFound is returned when a tab title does not exist.
var ErrTabNotFound = errors.New("sheets: tab not found")

// Tab identifies a tab in the spreadsheet.
type Tab struct {
	ID    int64
	Title string
}

// Store is the minimal spreadsheet surface the ledger relies on.
type Store interface {
	// Tabs lists every tab in the spreadsheet.
	Tabs(ctx context.Context) ([]Tab, error)
	// Read returns the raw cell grid of a tab, header row first.
	Read(ctx context.Context, title string) ([][]string, error)
	// Write replaces the whole content of a tab.
	Write(ctx context.Context, title string, values [][]string) error
	// AddTab creates an empty tab.
	AddTab(ctx context.Context, title string) (Tab, error)
	// DeleteTabs removes tabs by id in a single request.
	DeleteTabs(ctx context.Context, ids ...int64) error
}

// FindTab returns the tab with the given title.
func FindTab(tabs []Tab, title string) (Tab, bool) {
	for _, tab := range tabs {
		if tab.Title == title {
			return tab, true
		}
	}
	return Tab{}, false
}
