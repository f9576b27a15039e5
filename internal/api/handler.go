// Package api exposes the extract service REST API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"oder/internal/service"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler holds the services behind the HTTP surface.
type Handler struct {
	extracts *service.ExtractService
	runs     *service.RunService
	catalog  *service.CatalogService
	configs  *service.ConfigService
	meta     Pinger
	member   Pinger
	logger   *slog.Logger
}

func NewHandler(
	extracts *service.ExtractService,
	runs *service.RunService,
	catalog *service.CatalogService,
	configs *service.ConfigService,
	meta Pinger,
	member Pinger,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		extracts: extracts,
		runs:     runs,
		catalog:  catalog,
		configs:  configs,
		meta:     meta,
		member:   member,
		logger:   logger.With("component", "api"),
	}
}

// Routes mounts every endpoint under /api/v1.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Route("/extracts", func(r chi.Router) {
			r.Get("/", h.listExtracts)
			r.Post("/", h.createExtract)
			r.Route("/{extractID}", func(r chi.Router) {
				r.Get("/", h.getExtract)
				r.Put("/", h.updateExtract)
				r.Get("/run", h.runExtract)
				r.Get("/export", h.exportExtract)
				r.Get("/config", h.getConfig)
				r.Put("/config", h.putConfig)
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/lines-of-business", h.linesOfBusiness)
			r.Get("/lines-of-business/{lobID}/sub-lines", h.subLinesOfBusiness)
			r.Get("/lines-of-business/{lobID}/select-fields", h.selectFields)
			r.Get("/lines-of-business/{lobID}/criteria-fields", h.criteriaFields)
			r.Get("/criteria-fields/{fieldID}/values", h.criteriaValues)
			r.Get("/criteria-fields/{fieldID}/operators", h.operators)
		})

		r.Route("/reference", func(r chi.Router) {
			r.Get("/file-formats", h.fileFormats)
			r.Get("/file-delimiters", h.fileDelimiters)
			r.Get("/sftp-servers", h.sftpServers)
			r.Get("/schedule-parameters", h.scheduleParameters)
		})
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response encode failed", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
