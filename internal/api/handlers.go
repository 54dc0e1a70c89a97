// SPDX-License-Identifier: MIT

package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jamaisvu/jamaisvu/internal/recording"
)

type uploadRequest struct {
	Base64    string   `json:"base64"`
	IP        string   `json:"ip,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type metadataRequest struct {
	Location *struct {
		Coords struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"coords"`
	} `json:"location,omitempty"`
}

// coordsOf returns a coordinate pair only when both components are present.
func coordsOf(lat, lon *float64) *recording.Coordinates {
	if lat == nil || lon == nil {
		return nil
	}
	return &recording.Coordinates{Latitude: *lat, Longitude: *lon}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", recording.ErrBadRequest, err))
		return
	}
	if req.Base64 == "" {
		writeError(w, r, fmt.Errorf("%w: missing base64 payload", recording.ErrBadRequest))
		return
	}

	remoteAddr := req.IP
	if remoteAddr == "" {
		remoteAddr = s.clientIP(r)
	}

	doc, err := s.svc.Upload(r.Context(), req.Base64, coordsOf(req.Latitude, req.Longitude), remoteAddr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleUploadMetadata(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req metadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", recording.ErrBadRequest, err))
		return
	}
	var coords *recording.Coordinates
	if req.Location != nil {
		coords = coordsOf(req.Location.Coords.Latitude, req.Location.Coords.Longitude)
	}

	doc, err := s.svc.UploadMetadata(r.Context(), id, coords, s.clientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []recording.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"base64": base64.StdEncoding.EncodeToString(data),
	})
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	url, err := s.svc.Random(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	fc, err := s.svc.LocationData(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}
