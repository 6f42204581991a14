package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// GoogleStore implements Store on top of the Google Sheets v4 API.
type GoogleStore struct {
	service       *sheetsapi.Service
	spreadsheetID string
}

// LoadCredentials resolves a service account key given either as a path to
// a .json file or as the inline JSON document.
func LoadCredentials(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("sheets: service account key required")
	}
	if strings.HasSuffix(key, ".json") {
		data, err := os.ReadFile(key)
		if err != nil {
			return nil, fmt.Errorf("sheets: read service account key: %w", err)
		}
		return data, nil
	}
	return []byte(key), nil
}

// NewGoogleStore authenticates with a service account key and binds the
// store to one spreadsheet.
func NewGoogleStore(ctx context.Context, spreadsheetID string, credentials []byte) (*GoogleStore, error) {
	if spreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet id required")
	}
	jwtConfig, err := google.JWTConfigFromJSON(credentials, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse service account key: %w", err)
	}
	return NewGoogleStoreWithClient(ctx, spreadsheetID, jwtConfig.Client(ctx))
}

// NewGoogleStoreWithClient builds the store with a preconfigured HTTP client.
func NewGoogleStoreWithClient(ctx context.Context, spreadsheetID string, client *http.Client, opts ...option.ClientOption) (*GoogleStore, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	srv, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &GoogleStore{service: srv, spreadsheetID: spreadsheetID}, nil
}

func (g *GoogleStore) Tabs(ctx context.Context) ([]Tab, error) {
	spreadsheet, err := g.service.Spreadsheets.Get(g.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: get spreadsheet: %w", err)
	}
	tabs := make([]Tab, 0, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties == nil {
			continue
		}
		tabs = append(tabs, Tab{ID: sheet.Properties.SheetId, Title: sheet.Properties.Title})
	}
	return tabs, nil
}

func (g *GoogleStore) Read(ctx context.Context, title string) ([][]string, error) {
	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, a1(title)).Context(ctx).Do()
	if err != nil {
		if isMissingRange(err) {
			return nil, fmt.Errorf("%w: %s", ErrTabNotFound, title)
		}
		return nil, fmt.Errorf("sheets: read %s: %w", title, err)
	}
	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		line := make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			line[j] = fmt.Sprint(cell)
		}
		values[i] = line
	}
	return values, nil
}

// Write clears the tab before updating so rows removed by the caller do not
// linger below the new content.
func (g *GoogleStore) Write(ctx context.Context, title string, values [][]string) error {
	rng := a1(title)
	if _, err := g.service.Spreadsheets.Values.Clear(g.spreadsheetID, rng, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		if isMissingRange(err) {
			return fmt.Errorf("%w: %s", ErrTabNotFound, title)
		}
		return fmt.Errorf("sheets: clear %s: %w", title, err)
	}
	grid := make([][]any, len(values))
	for i, row := range values {
		line := make([]any, len(row))
		for j, cell := range row {
			line[j] = cell
		}
		grid[i] = line
	}
	_, err := g.service.Spreadsheets.Values.Update(g.spreadsheetID, rng, &sheetsapi.ValueRange{Values: grid}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: write %s: %w", title, err)
	}
	return nil
}

func (g *GoogleStore) AddTab(ctx context.Context, title string) (Tab, error) {
	resp, err := g.batchUpdate(ctx, []*sheetsapi.Request{{
		AddSheet: &sheetsapi.AddSheetRequest{
			Properties: &sheetsapi.SheetProperties{Title: title},
		},
	}})
	if err != nil {
		return Tab{}, fmt.Errorf("sheets: add tab %s: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return Tab{}, fmt.Errorf("sheets: add tab %s: empty reply", title)
	}
	props := resp.Replies[0].AddSheet.Properties
	return Tab{ID: props.SheetId, Title: props.Title}, nil
}

func (g *GoogleStore) DeleteTabs(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	requests := make([]*sheetsapi.Request, 0, len(ids))
	for _, id := range ids {
		requests = append(requests, &sheetsapi.Request{
			DeleteSheet: &sheetsapi.DeleteSheetRequest{SheetId: id, ForceSendFields: []string{"SheetId"}},
		})
	}
	if _, err := g.batchUpdate(ctx, requests); err != nil {
		return fmt.Errorf("sheets: delete tabs: %w", err)
	}
	return nil
}

func (g *GoogleStore) batchUpdate(ctx context.Context, requests []*sheetsapi.Request) (*sheetsapi.BatchUpdateSpreadsheetResponse, error) {
	return g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
}

// a1 quotes a tab title so names such as 2024-01-05 are not read as ranges.
func a1(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func isMissingRange(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range")
}
