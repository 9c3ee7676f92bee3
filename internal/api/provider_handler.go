package api

import (
	"net/http"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/interfaces"
)

// ProviderHandler reports the provider configuration.
type ProviderHandler struct {
	service interfaces.ProviderService
}

func NewProviderHandler(svc interfaces.ProviderService) *ProviderHandler {
	return &ProviderHandler{service: svc}
}

// HandleListProviders godoc
// @Summary      List providers
// @Description  Lists the chat providers in the order they are tried. The local fallback responder is always last.
// @Tags         Providers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.ProviderInfo
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/providers [get]
func (h *ProviderHandler) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.List(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}
