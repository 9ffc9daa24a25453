package sheet

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"

	"github.com/sfomuseum/go-csvdict/v2"
)

func init() {
	if err := RegisterSource(context.Background(), "csv", NewCSVSource); err != nil {
		panic(err)
	}
}

// CSVSource reads rows from a local CSV file, e.g. csv:///tmp/places.csv.
type CSVSource struct {
	path string
}

func NewCSVSource(ctx context.Context, uri string) (Source, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		return nil, fmt.Errorf("csv source needs a path")
	}
	return &CSVSource{path: path}, nil
}

// Values reads the file on every call. Columns are sorted by header so
// the output does not depend on map iteration order.
func (s *CSVSource) Values(ctx context.Context) ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r, err := csvdict.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	var rows []map[string]string
	seen := map[string]bool{}
	var header []string

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		for k := range row {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
		rows = append(rows, row)
	}
	sort.Strings(header)

	values := make([][]string, 0, len(rows)+1)
	values = append(values, header)
	for _, row := range rows {
		cells := make([]string, len(header))
		for i, k := range header {
			cells[i] = row[k]
		}
		values = append(values, cells)
	}
	return values, nil
}

func (s *CSVSource) Close() error {
	return nil
}
