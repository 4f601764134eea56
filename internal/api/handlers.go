package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/speleo-data/cavetopo/internal/sketch"
	"github.com/speleo-data/cavetopo/internal/survey"
	"github.com/speleo-data/cavetopo/internal/surveydb"
	"github.com/speleo-data/cavetopo/internal/topo"
	"github.com/speleo-data/cavetopo/internal/topo/parse"
	"github.com/speleo-data/cavetopo/internal/version"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// requestUnits resolves the ?units= query parameter, falling back to the
// server default.
func (s *Server) requestUnits(r *http.Request) (string, error) {
	units := r.URL.Query().Get("units")
	if units == "" {
		return s.units, nil
	}
	if !topo.IsValidUnit(units) {
		return "", fmt.Errorf("invalid units %q (valid: m, ft)", units)
	}
	return units, nil
}

func (s *Server) handleImportSurvey(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes+1))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}
	if len(raw) > maxUploadBytes {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "survey file too large")
		return
	}

	doc, err := parse.Document(raw)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "parse survey: "+err.Error())
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "unnamed survey"
	}

	id, err := s.db.ImportDocument(name, raw, doc)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "import survey: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"name":    name,
		"summary": survey.Summarize(doc),
	})
}

func (s *Server) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := s.db.ListSurveys()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"surveys": surveys})
}

// surveyStatus maps archive lookup errors to HTTP statuses.
func surveyStatus(err error) int {
	if errors.Is(err, surveydb.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	units, err := s.requestUnits(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := s.db.GetSurvey(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, surveyStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"survey":       record,
		"units":        units,
		"total_length": topo.ConvertDistance(record.TotalLengthMM, units),
	})
}

func (s *Server) handleDeleteSurvey(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteSurvey(r.PathValue("id")); err != nil {
		writeJSONError(w, surveyStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// shotResponse is one shot row with converted measurement fields alongside
// the raw stored values.
type shotResponse struct {
	surveydb.ShotRecord
	Distance       float64 `json:"distance"`
	AzimuthDeg     float64 `json:"azimuth_deg"`
	InclinationDeg float64 `json:"inclination_deg"`
	Flipped        bool    `json:"flipped"`
}

func (s *Server) handleSurveyShots(w http.ResponseWriter, r *http.Request) {
	units, err := s.requestUnits(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	shots, err := s.db.SurveyShots(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, surveyStatus(err), err.Error())
		return
	}

	converted := make([]shotResponse, 0, len(shots))
	for _, rec := range shots {
		model := topo.Shot{
			Azimuth:     rec.Azimuth,
			Inclination: rec.Inclination,
			Flags:       topo.ShotFlags(rec.Flags),
		}
		converted = append(converted, shotResponse{
			ShotRecord:     rec,
			Distance:       topo.ConvertDistance(rec.DistanceMM, units),
			AzimuthDeg:     model.AzimuthDegrees(),
			InclinationDeg: model.InclinationDegrees(),
			Flipped:        model.Flags.Flipped(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"units": units,
		"shots": converted,
	})
}

// tripResponse is one trip row plus its declination in degrees.
type tripResponse struct {
	surveydb.TripRecord
	DeclinationDeg float64 `json:"declination_deg"`
}

func (s *Server) handleSurveyTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.db.SurveyTrips(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, surveyStatus(err), err.Error())
		return
	}

	converted := make([]tripResponse, 0, len(trips))
	for _, rec := range trips {
		converted = append(converted, tripResponse{
			TripRecord:     rec,
			DeclinationDeg: topo.Trip{Declination: rec.Declination}.DeclinationDegrees(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"trips": converted})
}

// stationResponse is one reduced station position.
type stationResponse struct {
	Station string  `json:"station"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
}

func (s *Server) handleSurveyStations(w http.ResponseWriter, r *http.Request) {
	doc, status, err := s.documentFor(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}

	positions := survey.Reduce(doc)
	stations := make([]stationResponse, 0, len(positions))
	for _, p := range positions {
		stations = append(stations, stationResponse{
			Station: p.Station.String(),
			X:       p.X,
			Y:       p.Y,
			Z:       p.Z,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"units":    topo.Meters,
		"stations": stations,
	})
}

func (s *Server) handleSurveySketch(w http.ResponseWriter, r *http.Request) {
	doc, status, err := s.documentFor(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}

	var html []byte
	switch view := r.URL.Query().Get("view"); view {
	case "", "both":
		html, err = sketch.Page(doc)
	case "outline":
		html, err = sketch.View("outline", doc.Outline)
	case "sideview":
		html, err = sketch.View("sideview", doc.Sideview)
	default:
		writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid view %q (valid: outline, sideview, both)", view))
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// documentFor re-parses a survey's stored file bytes. The archive keeps the
// raw file precisely so geometry endpoints work from full fidelity rather
// than the relational projection.
func (s *Server) documentFor(id string) (*topo.Document, int, error) {
	raw, err := s.db.SurveyRaw(id)
	if err != nil {
		return nil, surveyStatus(err), err
	}
	doc, err := parse.Document(raw)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("archived survey no longer parses: %w", err)
	}
	return doc, http.StatusOK, nil
}
