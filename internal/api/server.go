// Package api serves the survey archive over HTTP/JSON.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/speleo-data/cavetopo/internal/surveydb"
	"github.com/speleo-data/cavetopo/internal/timeutil"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// maxUploadBytes caps survey file uploads. Real PocketTopo files are at
// most a few megabytes, so anything larger is rejected up front.
const maxUploadBytes = 32 << 20

// Server exposes the survey archive.
type Server struct {
	db    *surveydb.DB
	units string // default distance units for responses
	clock timeutil.Clock
}

// NewServer creates an API server over the given archive. units is the
// default distance unit for converted fields ("m" or "ft").
func NewServer(db *surveydb.DB, units string, clock timeutil.Clock) *Server {
	return &Server{
		db:    db,
		units: units,
		clock: clock,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// loggingMiddleware logs method, path, status, and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(s.clock.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/surveys", s.handleImportSurvey)
	mux.HandleFunc("GET /api/surveys", s.handleListSurveys)
	mux.HandleFunc("GET /api/surveys/{id}", s.handleGetSurvey)
	mux.HandleFunc("DELETE /api/surveys/{id}", s.handleDeleteSurvey)
	mux.HandleFunc("GET /api/surveys/{id}/shots", s.handleSurveyShots)
	mux.HandleFunc("GET /api/surveys/{id}/trips", s.handleSurveyTrips)
	mux.HandleFunc("GET /api/surveys/{id}/stations", s.handleSurveyStations)
	mux.HandleFunc("GET /api/surveys/{id}/sketch", s.handleSurveySketch)
	return mux
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.loggingMiddleware(s.ServeMux())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
