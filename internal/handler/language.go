package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qdashboard/qdashboard/internal/i18n"
)

type languageSwitcher interface {
	Current() string
	Set(lang string) error
	Catalog() *i18n.Catalog
}

type LanguageHandler struct {
	switcher languageSwitcher
}

func NewLanguageHandler(s languageSwitcher) *LanguageHandler {
	return &LanguageHandler{switcher: s}
}

func (h *LanguageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/language", h.Get)
	r.Put("/language", h.Set)
}

type languageRequest struct {
	Language string `json:"language"`
}

func (h *LanguageHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"language":  h.switcher.Current(),
		"languages": h.switcher.Catalog().Languages(),
	})
}

func (h *LanguageHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Language == "" {
		writeError(w, http.StatusBadRequest, "language is required")
		return
	}

	if err := h.switcher.Set(req.Language); err != nil {
		if errors.Is(err, i18n.ErrUnsupportedLanguage) {
			writeError(w, http.StatusBadRequest, "unsupported language")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to switch language")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": h.switcher.Current()})
}
