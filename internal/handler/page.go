package handler

import (
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

//go:embed web/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type pageData struct {
	Language      string
	APIPrefix     string
	RefreshMillis int64
}

// PageHandler serves the browser dashboard. The page polls the view and
// chart endpoints; it never talks to the Qubic RPC itself.
type PageHandler struct {
	lang      languageReader
	apiPrefix string
	refresh   time.Duration
}

func NewPageHandler(lang languageReader, apiPrefix string, refresh time.Duration) *PageHandler {
	if refresh <= 0 {
		refresh = 5 * time.Second
	}
	return &PageHandler{lang: lang, apiPrefix: apiPrefix, refresh: refresh}
}

func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, pageData{
		Language:      h.lang.Current(),
		APIPrefix:     h.apiPrefix,
		RefreshMillis: h.refresh.Milliseconds(),
	})
	if err != nil {
		slog.Error("failed to render dashboard page", "error", err)
	}
}
