package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/usecase"
)

// AssignmentHandler handles HTTP requests for assignments
type AssignmentHandler struct {
	engine *usecase.AssignmentEngine
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(engine *usecase.AssignmentEngine) *AssignmentHandler {
	return &AssignmentHandler{engine: engine}
}

// RegisterRoutes registers assignment routes
func (h *AssignmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/assets/{sno}/assign", h.AssignAsset).Methods("POST")
	router.HandleFunc("/assets/{sno}/return", h.ReturnAsset).Methods("POST")
	router.HandleFunc("/assignments", h.ListAssignments).Methods("GET")
}

// AssignAsset handles assigning an asset to a holder
func (h *AssignmentHandler) AssignAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HolderEmail string `json:"holder_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidation("invalid request body"))
		return
	}
	if req.HolderEmail == "" {
		writeError(w, domain.NewValidation("holder_email is required"))
		return
	}

	assignment, err := h.engine.Assign(r.Context(), mux.Vars(r)["sno"], req.HolderEmail, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

// ReturnAsset handles returning an assigned asset
func (h *AssignmentHandler) ReturnAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Remarks string `json:"remarks"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.NewValidation("invalid request body"))
			return
		}
	}

	assignment, err := h.engine.Return(r.Context(), mux.Vars(r)["sno"], req.Remarks, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

// ListAssignments handles listing assignment history with filters
func (h *AssignmentHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	filter := domain.AssignmentFilter{}

	if assetID := r.URL.Query().Get("asset_id"); assetID != "" {
		filter.AssetID = &assetID
	}
	if holderID := r.URL.Query().Get("holder_id"); holderID != "" {
		filter.HolderID = &holderID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.AssignmentStatus(status)
		filter.Status = &s
	}
	if includeDeleted := r.URL.Query().Get("include_deleted"); includeDeleted != "" {
		if v, err := strconv.ParseBool(includeDeleted); err == nil {
			filter.IncludeDeleted = v
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	assignments, err := h.engine.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": assignments,
		"total":       len(assignments),
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})
}
