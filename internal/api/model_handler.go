package api

import (
	"net/http"

	"neptune-ai/backend/internal/interfaces"
)

// ModelHandler reports the generation backends.
type ModelHandler struct {
	service interfaces.ModelService
}

func NewModelHandler(svc interfaces.ModelService) *ModelHandler {
	return &ModelHandler{service: svc}
}

// HandleListModels godoc
// @Summary      List generation backends
// @Description  Lists each backend with its endpoint, accepted model names and whether it is loaded.
// @Tags         Models
// @Produce      json
// @Success      200  {array}  service.BackendInfo
// @Router       /models [get]
func (h *ModelHandler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, r, http.StatusOK, h.service.List())
}
