package imagegen

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"image-bridge/internal/auth"
	"image-bridge/internal/domain"
)

// Reference images arrive inline as data URIs, so bodies can be large.
const maxRequestBytes = 32 << 20

// Handler is the HTTP API layer of the image gateway.
type Handler struct {
	service Service
}

// NewHandler creates a new handler injecting the service.
func NewHandler(s Service) *Handler {
	return &Handler{
		service: s,
	}
}

// RegisterRoutes attaches the OpenAI-compatible endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/v1/chat/completions", h.handleChatCompletions)
	r.Post("/chat/completions", h.handleChatCompletions)

	// Informational only, routing does not depend on it.
	r.Get("/v1/models", h.handleListModels)
	r.Get("/models", h.handleListModels)
}

// --- DTOs ---

// apiError mirrors the OpenAI error object.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// --- Handlers ---

// handleChatCompletions runs one generation.
func (h *Handler) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	credential, _ := auth.GetCredential(r.Context())

	completion, err := h.service.Generate(r.Context(), &req, credential)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, completion)
}

// handleListModels serves the static model catalogue.
func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListModels(r.Context()))
}

// RateLimitExceeded answers a request the rate limiter turned away.
func (h *Handler) RateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded, slow down")
}

// writeServiceError maps the service's error taxonomy onto HTTP.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		upstreamErr   *UpstreamError
		validationErr *ValidationError
		malformedErr  *MalformedResponseError
	)

	switch {
	case errors.As(err, &upstreamErr):
		writeUpstream(w, upstreamErr)
	case errors.Is(err, ErrMissingCredential):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &malformedErr):
		slog.ErrorContext(r.Context(), "unusable provider response", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		slog.ErrorContext(r.Context(), "image generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON is a helper function for sending json responses.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError sends an OpenAI-style error object.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: apiError{Message: message, Type: errorType(status)}})
}

// writeUpstream relays a provider failure with its own status and body.
func writeUpstream(w http.ResponseWriter, e *UpstreamError) {
	contentType := "text/plain; charset=utf-8"
	if json.Valid(e.Body) {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(e.StatusCode)
	_, _ = w.Write(e.Body)
}

func errorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request_error"
	case http.StatusUnauthorized:
		return "authentication_error"
	case http.StatusTooManyRequests:
		return "rate_limit_error"
	default:
		return "api_error"
	}
}
