package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nomimap/admin"
	"nomimap/api"
	"nomimap/app"
	"nomimap/auth"
	"nomimap/config"
	"nomimap/data"
	"nomimap/places"
	"nomimap/submit"
)

var EnvFlag = flag.String("env", "dev", "Set the environment")
var ServeFlag = flag.Bool("serve", false, "Run the server")
var AddressFlag = flag.String("address", ":8080", "Address for server")

// gated reports whether a path needs a session. The JSON API, login,
// status and static assets stay open.
func gated(path string) bool {
	switch {
	case path == "/", path == "/place", path == "/submit":
		return true
	case path == "/admin", strings.HasPrefix(path, "/admin/"):
		return true
	}
	return false
}

func purgeSessions(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := auth.PurgeExpired(ctx)
			if err != nil {
				app.Log("main", "purge sessions: %v", err)
				continue
			}
			if n > 0 {
				app.Log("main", "purged %d expired sessions", n)
			}
		}
	}
}

// loadPlaces builds the place store and loads the area presets.
func loadPlaces(cfg *config.Config) (*places.Store, error) {
	store := places.NewStore(cfg.Source, cfg.Revalidate)
	if err := places.Load(store, cfg.MapsKey); err != nil {
		return nil, fmt.Errorf("area presets: %w", err)
	}
	return store, nil
}

func main() {
	flag.Parse()

	if !*ServeFlag {
		fmt.Fprintln(os.Stderr, "--serve not set")
		flag.Usage()
		return
	}

	// a missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	if err := app.SetupLogger(*EnvFlag); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer app.Sync()

	cfg := config.Load()
	if err := cfg.CheckSheets(); err != nil && cfg.Source == config.DefaultSource {
		app.Log("main", "%v", err)
	}

	// the data dir holds sessions, the search index and preset overrides
	data.SetDir(cfg.DataDir)
	defer data.Close()

	auth.SetPassword(cfg.Password, cfg.PasswordHash)
	if cfg.Password == "" && cfg.PasswordHash == "" {
		app.Log("main", "no password configured, any non-empty pass is accepted")
	}

	// load the places
	store, err := loadPlaces(cfg)
	if err != nil {
		app.Log("main", "%v", err)
		data.Close()
		app.Sync()
		os.Exit(1)
	}
	defer store.Close()

	// load the submission form
	submit.Load(cfg.FormEmbedSrc)

	app.RegisterCheck(store.Check)
	app.RegisterCheck(func() app.StatusCheck {
		check := app.StatusCheck{Name: "Database", Status: true}
		db, err := data.DB()
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			check.Status = false
			check.Details = err.Error()
		}
		return check
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go purgeSessions(ctx, time.Hour)

	// serve the map
	http.HandleFunc("/", places.MapHandler)

	// serve the place drawer
	http.HandleFunc("/place", places.PlaceHandler)

	// serve the data api
	http.HandleFunc("/api/places", places.APIHandler)
	http.HandleFunc("/api/places/search", places.APIHandler)
	http.HandleFunc("/api/places.geojson", places.APIHandler)
	http.HandleFunc("/api/places.csv", places.APIHandler)
	http.HandleFunc("/api/presets", places.APIHandler)

	// serve the submission form
	http.HandleFunc("/submit", submit.Handler)

	// auth
	http.HandleFunc("/login", auth.LoginHandler)
	http.HandleFunc("/logout", auth.LogoutHandler)

	// serve the api doc
	http.Handle("/api", api.Handler())

	// status
	http.HandleFunc("/status", app.StatusHandler)

	// admin
	http.HandleFunc("/admin", admin.AdminHandler)
	http.HandleFunc("/admin/env", admin.EnvHandler)
	http.HandleFunc("/admin/log", admin.SysLogHandler)
	http.HandleFunc("/admin/api", admin.APILogHandler)

	// static assets
	static := app.Serve()
	http.Handle("/favicon.svg", static)
	http.Handle("/nomimap.css", static)

	app.Log("main", "Starting server on %s", *AddressFlag)

	handler := auth.Require(gated, http.DefaultServeMux)

	if err := http.ListenAndServe(*AddressFlag, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if *EnvFlag == "dev" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		if v := len(r.URL.Path); v > 1 && strings.HasSuffix(r.URL.Path, "/") {
			r.URL.Path = r.URL.Path[:v-1]
		}

		handler.ServeHTTP(w, r)
	})); err != nil {
		app.Log("main", "Server error: %v", err)
		return
	}
}
