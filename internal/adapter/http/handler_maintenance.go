package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/usecase"
)

// MaintenanceHandler handles HTTP requests for repair and retirement
type MaintenanceHandler struct {
	engine *usecase.MaintenanceEngine
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(engine *usecase.MaintenanceEngine) *MaintenanceHandler {
	return &MaintenanceHandler{engine: engine}
}

// RegisterRoutes registers maintenance routes
func (h *MaintenanceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/assets/{sno}/repair", h.SendForRepair).Methods("POST")
	router.HandleFunc("/assets/{sno}/repaired", h.MarkRepaired).Methods("POST")
	router.HandleFunc("/assets/{sno}/retire", h.RetireAsset).Methods("POST")
	router.HandleFunc("/assets/{sno}/history", h.GetHistory).Methods("GET")
}

func decodeRemarks(r *http.Request) (string, error) {
	var req struct {
		Remarks string `json:"remarks"`
	}
	if r.Body == nil || r.ContentLength == 0 {
		return "", nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", domain.NewValidation("invalid request body")
	}
	return req.Remarks, nil
}

// SendForRepair handles moving an asset into maintenance
func (h *MaintenanceHandler) SendForRepair(w http.ResponseWriter, r *http.Request) {
	remarks, err := decodeRemarks(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.engine.SendForRepair(r.Context(), mux.Vars(r)["sno"], remarks, actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "under maintenance"})
}

// MarkRepaired handles completing maintenance on an asset
func (h *MaintenanceHandler) MarkRepaired(w http.ResponseWriter, r *http.Request) {
	remarks, err := decodeRemarks(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.engine.MarkRepaired(r.Context(), mux.Vars(r)["sno"], remarks, actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "repaired"})
}

// RetireAsset handles permanently decommissioning an asset
func (h *MaintenanceHandler) RetireAsset(w http.ResponseWriter, r *http.Request) {
	remarks, err := decodeRemarks(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.engine.Retire(r.Context(), mux.Vars(r)["sno"], remarks, actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "retired"})
}

// GetHistory handles listing the repair history of an asset
func (h *MaintenanceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	serialNumber := mux.Vars(r)["sno"]

	records, err := h.engine.History(r.Context(), &serialNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   len(records),
	})
}
