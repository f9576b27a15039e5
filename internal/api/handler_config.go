package api

import (
	"encoding/json"
	"net/http"
	"time"

	"oder/internal/domain"
)

type extractConfigDTO struct {
	ExtractID           int64      `json:"extractId"`
	FileFormatID        *int64     `json:"fileFormatId,omitempty"`
	FileDelimiterID     *int64     `json:"fileDelimiterId,omitempty"`
	ScheduleParameterID *int64     `json:"scheduleParameterId,omitempty"`
	Runtime             string     `json:"runtime,omitempty"`
	SftpServerID        *int64     `json:"sftpServerId,omitempty"`
	SftpPath            string     `json:"sftpPath,omitempty"`
	EmailDLList         string     `json:"emailDlList,omitempty"`
	LastRunAt           *time.Time `json:"lastRunAt,omitempty"`
}

type fileFormatDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Extension   string `json:"extension"`
}

type fileDelimiterDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sftpServerDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type scheduleParameterDTO struct {
	ID        int64  `json:"id"`
	Frequency string `json:"frequency"`
	CronExpr  string `json:"cronExpr"`
}

func configDTO(c *domain.ExtractConfig) extractConfigDTO {
	return extractConfigDTO{
		ExtractID:           c.ExtractID,
		FileFormatID:        c.FileFormatID,
		FileDelimiterID:     c.FileDelimiterID,
		ScheduleParameterID: c.ScheduleParameterID,
		Runtime:             c.Runtime,
		SftpServerID:        c.SftpServerID,
		SftpPath:            c.SftpPath,
		EmailDLList:         c.EmailDLList,
		LastRunAt:           c.LastRunAt,
	}
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "extractID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid extract id"))
		return
	}
	c, err := h.configs.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, configDTO(c))
}

func (h *Handler) putConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "extractID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid extract id"))
		return
	}
	var dto extractConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.respondError(w, r, domain.ErrValidation("invalid request body"))
		return
	}

	c, err := h.configs.Save(r.Context(), &domain.ExtractConfig{
		ExtractID:           id,
		FileFormatID:        dto.FileFormatID,
		FileDelimiterID:     dto.FileDelimiterID,
		ScheduleParameterID: dto.ScheduleParameterID,
		Runtime:             dto.Runtime,
		SftpServerID:        dto.SftpServerID,
		SftpPath:            dto.SftpPath,
		EmailDLList:         dto.EmailDLList,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, configDTO(c))
}

func (h *Handler) fileFormats(w http.ResponseWriter, r *http.Request) {
	formats, err := h.configs.FileFormats(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]fileFormatDTO, len(formats))
	for i, f := range formats {
		out[i] = fileFormatDTO{ID: f.ID, Name: f.Name, Description: f.Description, Extension: f.Extension}
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) fileDelimiters(w http.ResponseWriter, r *http.Request) {
	delims, err := h.configs.FileDelimiters(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]fileDelimiterDTO, len(delims))
	for i, d := range delims {
		out[i] = fileDelimiterDTO{ID: d.ID, Name: d.Name, Value: d.Value}
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) sftpServers(w http.ResponseWriter, r *http.Request) {
	servers, err := h.configs.SftpServers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]sftpServerDTO, len(servers))
	for i, s := range servers {
		out[i] = sftpServerDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) scheduleParameters(w http.ResponseWriter, r *http.Request) {
	params, err := h.configs.ScheduleParameters(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]scheduleParameterDTO, len(params))
	for i, p := range params {
		out[i] = scheduleParameterDTO{ID: p.ID, Frequency: p.Frequency, CronExpr: p.CronExpr}
	}
	h.respondJSON(w, http.StatusOK, out)
}
