package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"neptune-ai/backend/internal/auth"
	"neptune-ai/backend/internal/interfaces"
	"neptune-ai/backend/internal/service"
)

type SessionHandler struct {
	service interfaces.SessionService
}

func NewSessionHandler(svc interfaces.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// HandleCreateSession godoc
// @Summary      Save a conversation
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      service.CreateSessionRequest  true  "Model and messages"
// @Success      201      {object}  service.CreateSessionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /session/ [post]
func (h *SessionHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}
	userID, _ := auth.UserIDFrom(r.Context())
	id, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusCreated, service.CreateSessionResponse{SessionID: id})
}

// HandleListSessions godoc
// @Summary      List saved conversations
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.Session
// @Failure      401  {object}  ErrorResponse
// @Router       /session/ [get]
func (h *SessionHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	sessions, err := h.service.List(r.Context(), userID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, sessions)
}

// HandleGetSession godoc
// @Summary      Get a saved conversation
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  model.Session
// @Failure      401        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /session/{sessionID} [get]
func (h *SessionHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	session, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, session)
}
