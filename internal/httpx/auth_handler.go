package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wrx861/tyres/internal/users"
)

type AuthHandler struct {
	Users *users.Repo
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/auth/telegram", h.authenticate)
	r.Get("/auth/me", h.me)
}

type authReq struct {
	TelegramID string `json:"telegram_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

func (h *AuthHandler) authenticate(w http.ResponseWriter, r *http.Request) {
	var req authReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if req.TelegramID == "" {
		badRequest(w, "telegram_id is required")
		return
	}
	u, err := h.Users.Authenticate(r.Context(), req.TelegramID, req.Username, req.FirstName, req.LastName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("telegram_id")
	if id == "" {
		badRequest(w, "telegram_id is required")
		return
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
