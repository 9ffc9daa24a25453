package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const (
	DefaultRange      = "A1:Z2000"
	DefaultSource     = "sheets://"
	DefaultRevalidate = 60 * time.Second
)

// Known lists the environment variables the service reads. Values are
// never displayed, only whether each one is set.
var Known = []string{
	"GOOGLE_SHEETS_API_KEY",
	"GOOGLE_SHEETS_ID",
	"GOOGLE_SHEETS_SHEET_NAME",
	"GOOGLE_SHEETS_RANGE",
	"GOOGLE_MAPS_API_KEY",
	"FORMS_EMBED_SRC",
	"NOMIMAP_SOURCE",
	"NOMIMAP_PASSWORD",
	"NOMIMAP_PASSWORD_HASH",
	"NOMIMAP_DATA_DIR",
	"NOMIMAP_REVALIDATE",
}

// Config holds the process settings, read once at startup.
type Config struct {
	SheetsKey   string
	SheetsID    string
	SheetsName  string
	SheetsRange string

	MapsKey      string
	FormEmbedSrc string

	Source     string
	Revalidate time.Duration

	Password     string
	PasswordHash string

	DataDir string
}

// MissingError reports spreadsheet settings that are not configured.
// Flags maps each setting to whether it is present.
type MissingError struct {
	Flags map[string]bool
	err   error
}

func (e *MissingError) Error() string {
	return "missing env: " + e.err.Error()
}

func (e *MissingError) Unwrap() []error {
	return multierr.Errors(e.err)
}

// Load reads the configuration from the environment.
func Load() *Config {
	c := &Config{
		SheetsKey:    os.Getenv("GOOGLE_SHEETS_API_KEY"),
		SheetsID:     os.Getenv("GOOGLE_SHEETS_ID"),
		SheetsName:   os.Getenv("GOOGLE_SHEETS_SHEET_NAME"),
		SheetsRange:  os.Getenv("GOOGLE_SHEETS_RANGE"),
		MapsKey:      os.Getenv("GOOGLE_MAPS_API_KEY"),
		FormEmbedSrc: strings.TrimSpace(os.Getenv("FORMS_EMBED_SRC")),
		Source:       os.Getenv("NOMIMAP_SOURCE"),
		Password:     os.Getenv("NOMIMAP_PASSWORD"),
		PasswordHash: os.Getenv("NOMIMAP_PASSWORD_HASH"),
		DataDir:      os.Getenv("NOMIMAP_DATA_DIR"),
		Revalidate:   DefaultRevalidate,
	}

	if c.SheetsRange == "" {
		c.SheetsRange = DefaultRange
	}
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(os.ExpandEnv("$HOME"), ".nomimap")
	}
	if v := os.Getenv("NOMIMAP_REVALIDATE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Revalidate = d
		}
	}
	return c
}

// CheckSheets returns a *MissingError when any spreadsheet setting is
// absent, nil otherwise.
func (c *Config) CheckSheets() error {
	flags := map[string]bool{
		"SHEETS_KEY":  c.SheetsKey != "",
		"SHEETS_ID":   c.SheetsID != "",
		"SHEETS_NAME": c.SheetsName != "",
	}

	var err error
	for _, name := range []string{"SHEETS_KEY", "SHEETS_ID", "SHEETS_NAME"} {
		if !flags[name] {
			err = multierr.Append(err, fmt.Errorf("%s not set", name))
		}
	}
	if err == nil {
		return nil
	}
	return &MissingError{Flags: flags, err: err}
}

// IsMissing reports whether err is a configuration error.
func IsMissing(err error) (*MissingError, bool) {
	var me *MissingError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
