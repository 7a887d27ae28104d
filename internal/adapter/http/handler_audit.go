package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/koshhq/kosh/internal/usecase"
)

// AuditHandler handles HTTP requests for the audit trail
type AuditHandler struct {
	trail *usecase.AuditTrail
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(trail *usecase.AuditTrail) *AuditHandler {
	return &AuditHandler{trail: trail}
}

// RegisterRoutes registers audit routes
func (h *AuditHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/audit-logs", h.ListAuditLogs).Methods("GET")
}

// ListAuditLogs handles paginated audit trail reads, newest first
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 20

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if v, err := strconv.Atoi(pageStr); err == nil && v > 0 {
			page = v
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := h.trail.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"page":    page,
		"limit":   limit,
	})
}
