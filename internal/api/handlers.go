package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/banshee-data/track.report/internal/db"
	"github.com/banshee-data/track.report/internal/outlier"
	"github.com/banshee-data/track.report/internal/stats"
	"github.com/banshee-data/track.report/internal/track"
	"github.com/banshee-data/track.report/internal/units"
)

// maxUploadBytes caps GPX uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// uploadResponse is the body returned for a successful upload.
type uploadResponse struct {
	TrackID    string           `json:"track_id"`
	Name       string           `json:"name"`
	Statistics stats.Statistics `json:"statistics"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// uploadTrack accepts a GPX file as multipart form data (field "file")
// or as a raw request body, processes it, and stores the result. An
// upload whose content hash matches an existing track returns 409 with
// the existing track's id.
func (s *Server) uploadTrack(w http.ResponseWriter, r *http.Request) {
	content, name, err := readUpload(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := configFromRequest(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, warnings, err := track.Process(content, cfg, s.loc)
	if err != nil {
		// Parse, aggregation, and validation failures are all faults of
		// the submitted content or configuration.
		s.writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if name == "" && doc.Metadata.Name != nil {
		name = *doc.Metadata.Name
	}
	if name == "" {
		name = "untitled track"
	}

	id, err := s.db.InsertTrack(name, content, doc, cfg)
	if errors.Is(err, db.ErrDuplicateTrack) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"error":    "track already uploaded",
			"track_id": id,
		})
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to store track: %v", err))
		return
	}

	s.writeJSON(w, http.StatusCreated, uploadResponse{
		TrackID:    id,
		Name:       name,
		Statistics: doc.Statistics,
		Warnings:   warnings,
	})
}

// readUpload extracts the GPX payload and an optional display name from
// the request.
func readUpload(r *http.Request) (content []byte, name string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	mediaType := r.Header.Get("Content-Type")
	if strings.HasPrefix(mediaType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("missing 'file' form field: %w", err)
		}
		defer file.Close()

		content, err = io.ReadAll(file)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read upload: %w", err)
		}
		name = r.FormValue("name")
		if name == "" {
			name = header.Filename
		}
		return content, name, nil
	}

	content, err = io.ReadAll(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read request body: %w", err)
	}
	if len(content) == 0 {
		return nil, "", errors.New("empty request body")
	}
	return content, r.URL.Query().Get("name"), nil
}

// configFromRequest builds a processing config from query parameters,
// falling back to the defaults for anything unset.
func configFromRequest(r *http.Request) (track.Config, error) {
	cfg := track.DefaultConfig()
	q := r.URL.Query()

	if v := q.Get("use_iqr"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid 'use_iqr' parameter: %q", v)
		}
		cfg.UseIQR = parsed
	}
	if v := q.Get("window_size"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 2 {
			return cfg, fmt.Errorf("invalid 'window_size' parameter: %q", v)
		}
		cfg.WindowSize = parsed
	}
	if v := q.Get("interpolation_method"); v != "" {
		cfg.InterpolationMethod = v
	}
	return cfg, nil
}

func (s *Server) listTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.db.Tracks()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to list tracks: %v", err))
		return
	}
	if tracks == nil {
		tracks = []db.TrackSummary{}
	}
	s.writeJSON(w, http.StatusOK, tracks)
}

func (s *Server) showTrack(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadTrack(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteTrack(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeleteTrack(r.PathValue("id"))
	if errors.Is(err, db.ErrTrackNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "track not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to delete track: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reprocessTrack recomputes statistics for a stored track with a new
// configuration. The request body is an optional JSON config; absent
// fields fall back to defaults. Concurrent reprocessing of the same
// track is last-write-wins.
func (s *Server) reprocessTrack(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadTrack(w, r)
	if !ok {
		return
	}

	cfg := track.DefaultConfig()
	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &cfg); err != nil {
				s.writeJSONError(w, http.StatusBadRequest,
					fmt.Sprintf("invalid config: %v", err))
				return
			}
		}
	}

	st, warnings, err := track.Reprocess(rec.Document.Waypoints, rec.Document.Metadata, cfg)
	if err != nil {
		s.writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.db.UpdateStatistics(rec.ID, st, cfg); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to store statistics: %v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		TrackID:    rec.ID,
		Name:       rec.Name,
		Statistics: st,
		Warnings:   warnings,
	})
}

// speedsResponse carries the per-interval speed series in the requested
// display units.
type speedsResponse struct {
	TrackID   string    `json:"track_id"`
	Units     string    `json:"units"`
	Raw       []float64 `json:"raw"`
	Processed []float64 `json:"processed"`
}

// showSpeeds returns the raw and processed speed series for a stored
// track, recomputed from its waypoints with its stored configuration.
// The optional 'units' query parameter selects mph, kmph, or mps.
func (s *Server) showSpeeds(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadTrack(w, r)
	if !ok {
		return
	}

	target, ok := s.requestUnits(w, r)
	if !ok {
		return
	}

	raw, processed, err := statsSeries(rec)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := speedsResponse{
		TrackID:   rec.ID,
		Units:     target,
		Raw:       convertSeries(raw, target),
		Processed: convertSeries(processed, target),
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func statsSeries(rec *db.TrackRecord) (raw, processed []float64, err error) {
	cfg := stats.Config{
		UseIQR:              rec.Config.UseIQR,
		WindowSize:          rec.Config.WindowSize,
		InterpolationMethod: outlier.Method(rec.Config.InterpolationMethod),
	}
	return stats.Series(rec.Document.Waypoints, cfg)
}

// requestUnits resolves the optional 'units' query parameter against
// the server default, writing a 400 for unknown values.
func (s *Server) requestUnits(w http.ResponseWriter, r *http.Request) (string, bool) {
	target := r.URL.Query().Get("units")
	if target == "" {
		return s.units, true
	}
	if !units.IsValid(target) {
		s.writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid 'units' parameter: must be one of %s", units.GetValidUnitsString()))
		return "", false
	}
	return target, true
}

func convertSeries(speedsKMH []float64, target string) []float64 {
	out := make([]float64, len(speedsKMH))
	for i, v := range speedsKMH {
		out[i] = units.ConvertSpeed(v, target)
	}
	return out
}

// loadTrack resolves the {id} path parameter, writing the error
// response itself when the track cannot be loaded.
func (s *Server) loadTrack(w http.ResponseWriter, r *http.Request) (*db.TrackRecord, bool) {
	rec, err := s.db.TrackByID(r.PathValue("id"))
	if errors.Is(err, db.ErrTrackNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "track not found")
		return nil, false
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to load track: %v", err))
		return nil, false
	}
	return rec, true
}
