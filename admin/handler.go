package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sagarc03/wally"
)

// Service is the part of wally.Service the admin API moderates.
type Service interface {
	ListComments(ctx context.Context, q wally.ListQuery) (wally.ListResult, error)
	AddComment(ctx context.Context, name, text string) (wally.Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
}

// CORSConfig configures cross-origin access to the admin API.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"min=0"`
}

type HandlerConfig struct {
	Verifier Verifier
	CORS     CORSConfig
}

// Handler serves the admin API.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// CommentInput is the body of POST /comments.
type CommentInput struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// Router returns the admin routes. The health probe is never authenticated.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.Verifier))
		r.Get("/comments", h.handleList)
		r.Post("/comments", h.handleCreate)
		r.Delete("/comments/{id}", h.handleDelete)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	cursor := r.URL.Query().Get("cursor")

	limit := 100
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = max(1, min(1000, parsed))
		}
	}

	result, err := h.service.ListComments(r.Context(), wally.ListQuery{Limit: limit, Cursor: cursor})
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, wally.MaxBodyBytes)

	var in CommentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	c, err := h.service.AddComment(r.Context(), in.Name, in.Comment)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, fmt.Errorf("%w: invalid comment id", wally.ErrInvalidInput))
		return
	}

	if err := h.service.DeleteComment(r.Context(), id); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
