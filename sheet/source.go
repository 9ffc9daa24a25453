package sheet

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/aaronland/go-roster"
)

// Source returns spreadsheet values, header row first.
type Source interface {
	Values(ctx context.Context) ([][]string, error)
	Close() error
}

// SourceInitializationFunc creates a Source from a URI.
type SourceInitializationFunc func(ctx context.Context, uri string) (Source, error)

// UpstreamError is a non-success response from the spreadsheet service.
// Body is the raw upstream error body.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

// IsUpstream reports whether err came from the spreadsheet service.
func IsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

var sourceRoster roster.Roster

// RegisterSource makes a Source available under scheme for NewSource.
func RegisterSource(ctx context.Context, scheme string, fn SourceInitializationFunc) error {
	if err := ensureRoster(); err != nil {
		return err
	}
	return sourceRoster.Register(ctx, scheme, fn)
}

func ensureRoster() error {
	if sourceRoster != nil {
		return nil
	}
	r, err := roster.NewDefaultRoster()
	if err != nil {
		return err
	}
	sourceRoster = r
	return nil
}

// NewSource returns the Source registered for the scheme of uri.
func NewSource(ctx context.Context, uri string) (Source, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse source uri: %w", err)
	}
	if err := ensureRoster(); err != nil {
		return nil, err
	}

	i, err := sourceRoster.Driver(ctx, u.Scheme)
	if err != nil {
		return nil, fmt.Errorf("unknown source %q (have %s): %w", u.Scheme, strings.Join(Schemes(), ", "), err)
	}

	fn := i.(SourceInitializationFunc)
	return fn(ctx, uri)
}

// Schemes lists the registered source schemes as "<scheme>://".
func Schemes() []string {
	ctx := context.Background()
	if err := ensureRoster(); err != nil {
		return nil
	}

	var schemes []string
	for _, d := range sourceRoster.Drivers(ctx) {
		schemes = append(schemes, strings.ToLower(d)+"://")
	}
	sort.Strings(schemes)
	return schemes
}
