package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/usecase"
)

const dateLayout = "2006-01-02"

// AssetHandler handles HTTP requests for the asset registry
type AssetHandler struct {
	registry *usecase.AssetRegistry
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(registry *usecase.AssetRegistry) *AssetHandler {
	return &AssetHandler{registry: registry}
}

// RegisterRoutes registers asset routes. Stats must come before the
// serial-number route or mux will swallow it.
func (h *AssetHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/assets/stats", h.GetStats).Methods("GET")
	router.HandleFunc("/assets", h.CreateAsset).Methods("POST")
	router.HandleFunc("/assets", h.ListAssets).Methods("GET")
	router.HandleFunc("/assets/{sno}", h.GetAsset).Methods("GET")
	router.HandleFunc("/assets/{sno}", h.UpdateAsset).Methods("PATCH")
	router.HandleFunc("/assets/{sno}", h.DeleteAsset).Methods("DELETE")
}

type createAssetPayload struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	SerialNumber   string  `json:"serial_number"`
	Description    string  `json:"description"`
	PurchaseDate   string  `json:"purchase_date"`
	WarrantyExpiry string  `json:"warranty_expiry"`
	Cost           float64 `json:"cost"`
	Status         string  `json:"status"`
}

type updateAssetPayload struct {
	Name           *string  `json:"name"`
	Category       *string  `json:"category"`
	SerialNumber   *string  `json:"serial_number"`
	Description    *string  `json:"description"`
	PurchaseDate   *string  `json:"purchase_date"`
	WarrantyExpiry *string  `json:"warranty_expiry"`
	Cost           *float64 `json:"cost"`
}

// CreateAsset handles asset registration
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var payload createAssetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, domain.NewValidation("invalid request body"))
		return
	}

	req := usecase.CreateAssetRequest{
		Name:         payload.Name,
		Category:     payload.Category,
		SerialNumber: payload.SerialNumber,
		Description:  payload.Description,
		Cost:         payload.Cost,
		Status:       domain.AssetStatus(payload.Status),
	}

	var err error
	if req.PurchaseDate, err = parseDate(payload.PurchaseDate); err != nil {
		writeError(w, err)
		return
	}
	if req.WarrantyExpiry, err = parseDate(payload.WarrantyExpiry); err != nil {
		writeError(w, err)
		return
	}

	asset, err := h.registry.Create(r.Context(), req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// GetAsset handles retrieving a single asset by serial number
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.registry.Get(r.Context(), mux.Vars(r)["sno"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// ListAssets handles listing assets with filters
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	filter := domain.AssetFilter{}

	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = &category
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.AssetStatus(status)
		filter.Status = &s
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

	assets, err := h.registry.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assets": assets,
		"total":  len(assets),
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// UpdateAsset handles partial attribute updates
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	var payload updateAssetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, domain.NewValidation("invalid request body"))
		return
	}

	req := usecase.UpdateAssetRequest{
		Name:         payload.Name,
		Category:     payload.Category,
		SerialNumber: payload.SerialNumber,
		Description:  payload.Description,
		Cost:         payload.Cost,
	}

	if payload.PurchaseDate != nil {
		parsed, err := parseDate(*payload.PurchaseDate)
		if err != nil {
			writeError(w, err)
			return
		}
		req.PurchaseDate = parsed
	}
	if payload.WarrantyExpiry != nil {
		parsed, err := parseDate(*payload.WarrantyExpiry)
		if err != nil {
			writeError(w, err)
			return
		}
		req.WarrantyExpiry = parsed
	}

	asset, err := h.registry.Update(r.Context(), mux.Vars(r)["sno"], req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// DeleteAsset handles removing an asset from the registry
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(r.Context(), mux.Vars(r)["sno"], actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetStats handles asset statistics
func (h *AssetHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.registry.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, domain.NewValidation("invalid date, expected YYYY-MM-DD")
	}
	return &parsed, nil
}
