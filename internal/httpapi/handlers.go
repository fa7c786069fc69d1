package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rsilvagit/jobboard/internal/listing"
	"github.com/rsilvagit/jobboard/internal/model"
)

type handlers struct {
	svc        *listing.Service
	log        *zap.Logger
	maxAge     time.Duration
	baseURL    string
	adminToken string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, http.StatusOK, "text/plain; charset=utf-8", []byte("Server is running"))
}

// listJobs serves GET /api/jobs?page=&limit=&type=.
func (h *handlers) listJobs(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := listing.ParseQuery(qs.Get("page"), qs.Get("limit"), qs.Get("type"))

	data, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]bool{"success": false})
		return
	}
	if h.maxAge > 0 {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(h.maxAge.Seconds())))
	}
	writeRaw(w, http.StatusOK, "application/json", data)
}

// getJob serves GET /api/jobs/{slug}.
func (h *handlers) getJob(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, model.Single{Status: model.StatusError})
		return
	}

	switch res.Outcome {
	case listing.Found:
		writeRaw(w, http.StatusOK, "application/json", res.Body)
	case listing.Expired:
		writeJSON(w, http.StatusGone, model.Single{Status: model.StatusExpired})
	case listing.Redirect:
		http.Redirect(w, r, res.Location, http.StatusMovedPermanently)
	default:
		writeJSON(w, http.StatusNotFound, model.Single{Status: model.StatusNotFound})
	}
}

type clearCacheResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// clearCache serves GET /api/admin/clear-cache. When an admin token is
// configured the request must carry it in X-Admin-Token.
func (h *handlers) clearCache(w http.ResponseWriter, r *http.Request) {
	if h.adminToken != "" {
		got := r.Header.Get("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.adminToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, clearCacheResponse{Message: "admin token required"})
			return
		}
	}
	h.svc.FlushCache(r.Context())
	h.log.Info("cache cleared by admin", zap.String("remote", r.RemoteAddr))
	writeJSON(w, http.StatusOK, clearCacheResponse{Success: true, Message: "cache cleared"})
}

// sitemap serves GET /sitemap.xml.
func (h *handlers) sitemap(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Sitemap(r.Context(), h.baseURL)
	if err != nil {
		http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
		return
	}
	writeRaw(w, http.StatusOK, "application/xml; charset=utf-8", out)
}
