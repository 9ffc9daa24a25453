package data

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

var (
	dirMu sync.RWMutex
	dir   = filepath.Join(os.ExpandEnv("$HOME"), ".nomimap")
)

// SetDir sets the directory holding the database and data files.
// It must be called before the database is first opened.
func SetDir(d string) {
	dirMu.Lock()
	dir = d
	dirMu.Unlock()
}

// Dir returns the data directory
func Dir() string {
	dirMu.RLock()
	defer dirMu.RUnlock()
	return dir
}

func path(key string) string {
	return filepath.Join(Dir(), "data", key)
}

// Save to disk
func Save(key, val string) error {
	file := path(key)
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}
	return os.WriteFile(file, []byte(val), 0644)
}

// Load file from disk
func Load(key string) ([]byte, error) {
	return os.ReadFile(path(key))
}

func SaveJSON(key string, val interface{}) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return Save(key, string(b))
}

// LoadJSON decodes the file stored under key into val
func LoadJSON(key string, val interface{}) error {
	b, err := Load(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, val)
}
