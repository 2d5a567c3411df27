package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexalbu001/envreport/internal/render"
	"github.com/alexalbu001/envreport/internal/volume"
	"github.com/alexalbu001/envreport/pkg"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "not_ready",
			Timestamp: s.now().UTC(),
			Reason:    "server is not accepting requests",
		})
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: s.now().UTC(),
	})
}

// collect runs a collection for the request's region. It writes the error
// response itself and returns nil when the region is rejected.
func (s *Server) collect(w http.ResponseWriter, r *http.Request) *pkg.EnvironmentReport {
	region := r.URL.Query().Get("region")
	if region == "" {
		region = s.config.Region
	}

	report, err := s.collector.Collect(r.Context(), region)
	if err != nil {
		var invalid *pkg.InvalidRegionError
		if errors.As(err, &invalid) {
			writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRegion, invalid.Error(), false,
				map[string]any{"region": invalid.Region})
			return nil
		}
		slog.Error("report collection failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError,
			"failed to collect report", true, nil)
		return nil
	}
	return report
}

// handlePage renders the HTML report together with the volume listing.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	report := s.collect(w, r)
	if report == nil {
		return
	}

	page := &render.Page{Name: s.config.Name, Report: report}
	if s.config.VolumePath != "" {
		if s.config.TouchVolume {
			if err := volume.Touch(s.config.VolumePath, s.now()); err != nil {
				slog.Error("failed to touch volume marker", slog.String("error", err.Error()))
			}
		}
		page.Files = volume.List(s.config.VolumePath)
	}

	s.writeRendered(w, r, render.FormatHTML, "text/html; charset=utf-8", page)
}

// handleReport returns the report as JSON, or YAML with ?format=yaml.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format := render.FormatJSON
	contentType := "application/json"
	switch f := r.URL.Query().Get("format"); f {
	case "", string(render.FormatJSON):
	case string(render.FormatYAML):
		format = render.FormatYAML
		contentType = "application/yaml"
	default:
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"unsupported format: "+f, false, map[string]any{"supported": []string{"json", "yaml"}})
		return
	}

	report := s.collect(w, r)
	if report == nil {
		return
	}

	s.writeRendered(w, r, format, contentType, &render.Page{Name: s.config.Name, Report: report})
}

func (s *Server) writeRendered(w http.ResponseWriter, r *http.Request, format render.Format, contentType string, page *render.Page) {
	var buf bytes.Buffer
	if err := render.NewWriter(format, &buf).Render(page); err != nil {
		slog.Error("failed to render report", slog.String("format", string(format)), slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "failed to render report", false, nil)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("failed to write response", slog.String("error", err.Error()))
	}
}
