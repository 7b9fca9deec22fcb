package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB        Pinger
	Version   string
	GitCommit string
}

func NewHealthHandler(db Pinger, version, gitCommit string) *HealthHandler {
	return &HealthHandler{DB: db, Version: version, GitCommit: gitCommit}
}

type healthBody struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

// Liveness reports that the process is up. It never touches dependencies so
// a broken database does not get the process restarted.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, healthBody{
		Status:    "ok",
		Version:   h.Version,
		GitCommit: h.GitCommit,
	})
}

// Readiness reports whether the server can serve traffic, which requires the
// database to answer a ping.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.DB == nil {
		writeHealth(w, http.StatusServiceUnavailable, healthBody{Status: "no database"})
		return
	}
	if err := h.DB.Ping(ctx); err != nil {
		writeHealth(w, http.StatusServiceUnavailable, healthBody{Status: "database unreachable"})
		return
	}

	writeHealth(w, http.StatusOK, healthBody{Status: "ready"})
}

func writeHealth(w http.ResponseWriter, status int, body healthBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
