// Package api is the read-only HTTP companion of the bot: progress,
// statistics, spreadsheet export and a live notification feed per profile.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/verbadiem/internal/excel"
	"github.com/example/verbadiem/internal/session"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves every API endpoint
type Handler struct {
	registry  *session.Registry
	hub       *Hub
	tokenHash string
	logger    *log.Logger
	upgrader  websocket.Upgrader
	started   time.Time
}

// NewHandler creates the API handler. An empty tokenHash disables auth.
func NewHandler(registry *session.Registry, hub *Hub, tokenHash string, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		registry:  registry,
		hub:       hub,
		tokenHash: tokenHash,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		started: time.Now(),
	}
}

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"error": message}, status)
}

// HealthCheck reports that the process is up
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"status":    "ok",
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now(),
	}, http.StatusOK)
}

// requireToken checks the bearer token against the configured bcrypt hash.
// Websocket clients may pass it as the token query parameter instead.
func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.tokenHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.URL.Query().Get("token")
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
		if token == "" {
			errorResponse(w, "missing token", http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h.tokenHash), []byte(token)); err != nil {
			errorResponse(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// profile resolves the {id} route variable to an open session. Profiles
// without stored data are reported as not found.
func (h *Handler) profile(w http.ResponseWriter, r *http.Request) (int64, *session.Orchestrator, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		errorResponse(w, "invalid profile id", http.StatusBadRequest)
		return 0, nil, false
	}

	if o, ok := h.registry.Loaded(id); ok {
		return id, o, true
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ids, err := h.registry.Profiles(ctx)
	if err != nil {
		h.logger.Printf("Failed to list profiles: %v", err)
		errorResponse(w, "failed to load profile", http.StatusInternalServerError)
		return 0, nil, false
	}
	for _, known := range ids {
		if known != id {
			continue
		}
		o, err := h.registry.Get(ctx, id)
		if err != nil {
			h.logger.Printf("Failed to open profile %d: %v", id, err)
			errorResponse(w, "failed to load profile", http.StatusInternalServerError)
			return 0, nil, false
		}
		return id, o, true
	}
	errorResponse(w, "profile not found", http.StatusNotFound)
	return 0, nil, false
}

// GetProgress returns the progress record of a profile
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	_, o, ok := h.profile(w, r)
	if !ok {
		return
	}
	jsonResponse(w, o.Progress(), http.StatusOK)
}

// GetStatistics returns the statistics of a profile
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	_, o, ok := h.profile(w, r)
	if !ok {
		return
	}
	jsonResponse(w, o.Statistics(), http.StatusOK)
}

// ExportProgress downloads the learned words as a spreadsheet
func (h *Handler) ExportProgress(w http.ResponseWriter, r *http.Request) {
	id, o, ok := h.profile(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := excel.ExportProgress(&buf, o.Progress()); err != nil {
		h.logger.Printf("Failed to export profile %d: %v", id, err)
		errorResponse(w, "failed to export progress", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="verbadiem-%d.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Feed upgrades to a websocket that receives the profile's notifications
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.profile(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("WebSocket upgrade error: %v", err)
		return
	}
	h.hub.attach(conn, id)
}
