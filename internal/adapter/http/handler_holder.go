package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/usecase"
)

// HolderHandler handles HTTP requests for holders
type HolderHandler struct {
	onboarding *usecase.OnboardingService
}

// NewHolderHandler creates a new holder handler
func NewHolderHandler(onboarding *usecase.OnboardingService) *HolderHandler {
	return &HolderHandler{onboarding: onboarding}
}

// RegisterRoutes registers holder routes
func (h *HolderHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/holders/{email}/onboard", h.OnboardHolder).Methods("POST")
}

// OnboardHolder handles bulk-provisioning one asset per requested category
func (h *HolderHandler) OnboardHolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Categories []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidation("invalid request body"))
		return
	}
	if len(req.Categories) == 0 {
		writeError(w, domain.NewValidation("categories are required"))
		return
	}

	report, err := h.onboarding.Provision(r.Context(), mux.Vars(r)["email"], req.Categories, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
