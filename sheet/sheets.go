package sheet

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"nomimap/app"
	"nomimap/config"
)

func init() {
	if err := RegisterSource(context.Background(), "sheets", NewSheetsSourceFromURI); err != nil {
		panic(err)
	}
}

// SheetsSource reads a range from Google Sheets with an API key.
type SheetsSource struct {
	svc  *sheets.Service
	id   string
	rng  string
	key  string
	base string
}

// NewSheetsSourceFromURI builds a SheetsSource from the environment.
// The uri may override the sheet with ?id=, ?sheet= and ?range=.
func NewSheetsSourceFromURI(ctx context.Context, uri string) (Source, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}

	cfg := config.Load()
	q := u.Query()
	if v := q.Get("id"); v != "" {
		cfg.SheetsID = v
	}
	if v := q.Get("sheet"); v != "" {
		cfg.SheetsName = v
	}
	if v := q.Get("range"); v != "" {
		cfg.SheetsRange = v
	}
	return NewSheetsSource(ctx, cfg)
}

// NewSheetsSource returns a source for the configured spreadsheet. A
// *config.MissingError is returned when key, id or sheet name is unset.
func NewSheetsSource(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (*SheetsSource, error) {
	if err := cfg.CheckSheets(); err != nil {
		return nil, err
	}

	opts = append([]option.ClientOption{option.WithAPIKey(cfg.SheetsKey)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	rng := cfg.SheetsRange
	if rng == "" {
		rng = config.DefaultRange
	}

	return &SheetsSource{
		svc:  svc,
		id:   cfg.SheetsID,
		rng:  cfg.SheetsName + "!" + rng,
		key:  cfg.SheetsKey,
		base: svc.BasePath,
	}, nil
}

// Values fetches the range row-major and converts every cell to a string.
func (s *SheetsSource) Values(ctx context.Context) ([][]string, error) {
	start := time.Now()
	apiURL := fmt.Sprintf("%sv4/spreadsheets/%s/values/%s?majorDimension=ROWS&key=%s",
		s.base, url.PathEscape(s.id), url.PathEscape(s.rng), s.key)

	resp, err := s.svc.Spreadsheets.Values.Get(s.id, s.rng).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			app.RecordAPICall("sheets", "GET", apiURL, gerr.Code, time.Since(start), err)
			return nil, &UpstreamError{Status: gerr.Code, Body: gerr.Body}
		}
		app.RecordAPICall("sheets", "GET", apiURL, 0, time.Since(start), err)
		return nil, fmt.Errorf("sheets request: %w", err)
	}
	app.RecordAPICall("sheets", "GET", apiURL, resp.HTTPStatusCode, time.Since(start), nil)

	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		values[i] = make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			values[i][j] = fmt.Sprint(cell)
		}
	}
	return values, nil
}

func (s *SheetsSource) Close() error {
	return nil
}
