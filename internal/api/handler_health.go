package api

import (
	"net/http"
)

type healthResponse struct {
	Status      string `json:"status"`
	MetaStore   string `json:"metaStore"`
	MemberStore string `json:"memberStore"`
}

// health reports reachability of both backing stores. The member store is
// optional (MEMBER_DSN unset in builder-only deployments) and reports
// "disabled" rather than failing the check.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", MetaStore: "ok", MemberStore: "ok"}
	status := http.StatusOK

	if err := h.meta.PingContext(r.Context()); err != nil {
		resp.MetaStore = "unreachable"
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	if h.member == nil {
		resp.MemberStore = "disabled"
	} else if err := h.member.PingContext(r.Context()); err != nil {
		resp.MemberStore = "unreachable"
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	h.respondJSON(w, status, resp)
}
