package app

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"
)

var startTime = time.Now()

// StatusCheck represents a single status check result
type StatusCheck struct {
	Name    string `json:"name"`
	Status  bool   `json:"status"`
	Details string `json:"details,omitempty"`
}

// StatusResponse represents the full status response
type StatusResponse struct {
	Healthy   bool          `json:"healthy"`
	Uptime    string        `json:"uptime"`
	GoVersion string        `json:"go_version"`
	Memory    MemoryStatus  `json:"memory"`
	Checks    []StatusCheck `json:"checks"`
}

// MemoryStatus represents memory usage
type MemoryStatus struct {
	Alloc      uint64 `json:"alloc_mb"`
	Sys        uint64 `json:"sys_mb"`
	NumGC      uint32 `json:"num_gc"`
	Goroutines int    `json:"goroutines"`
}

// CheckFunc reports the state of one dependency. Packages register
// their checks from main to avoid import cycles.
type CheckFunc func() StatusCheck

var (
	checksMu sync.RWMutex
	checks   []CheckFunc
)

// RegisterCheck adds a check to the status page
func RegisterCheck(fn CheckFunc) {
	checksMu.Lock()
	checks = append(checks, fn)
	checksMu.Unlock()
}

// StatusHandler handles the /status endpoint
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	status := buildStatus()

	if r.URL.Query().Get("quick") == "1" {
		RespondJSON(w, map[string]interface{}{
			"healthy": status.Healthy,
		})
		return
	}

	if WantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
		return
	}

	Respond(w, r, Response{
		Title:       "Status",
		Description: "Server status and health checks",
		HTML:        renderStatusHTML(status),
	})
}

func buildStatus() StatusResponse {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	checksMu.RLock()
	fns := make([]CheckFunc, len(checks))
	copy(fns, checks)
	checksMu.RUnlock()

	healthy := true
	results := make([]StatusCheck, 0, len(fns))
	for _, fn := range fns {
		c := fn()
		if !c.Status {
			healthy = false
		}
		results = append(results, c)
	}

	return StatusResponse{
		Healthy:   healthy,
		Uptime:    formatUptime(time.Since(startTime)),
		GoVersion: runtime.Version(),
		Memory: MemoryStatus{
			Alloc:      m.Alloc / 1024 / 1024,
			Sys:        m.Sys / 1024 / 1024,
			NumGC:      m.NumGC,
			Goroutines: runtime.NumGoroutine(),
		},
		Checks: results,
	}
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func renderStatusHTML(status StatusResponse) string {
	var sb strings.Builder

	state := `<span style="color:#27ae60;">healthy</span>`
	if !status.Healthy {
		state = `<span style="color:#c0392b;">degraded</span>`
	}
	sb.WriteString(fmt.Sprintf(`<div class="card"><h3>Status: %s</h3>`, state))
	sb.WriteString(fmt.Sprintf(`<p class="text-muted">Uptime %s · %s · %d MB alloc · %d goroutines</p>`,
		status.Uptime, status.GoVersion, status.Memory.Alloc, status.Memory.Goroutines))

	sb.WriteString(`<table><tr><th>Check</th><th>Status</th><th>Details</th></tr>`)
	for _, c := range status.Checks {
		mark := "✓"
		if !c.Status {
			mark = "✗"
		}
		sb.WriteString(fmt.Sprintf(`<tr><td>%s</td><td>%s</td><td>%s</td></tr>`,
			html.EscapeString(c.Name), mark, html.EscapeString(c.Details)))
	}
	sb.WriteString(`</table></div>`)
	return sb.String()
}
