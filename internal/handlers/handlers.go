package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"expense-service/internal/auth"
	"expense-service/internal/events"
	"expense-service/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

// ClaimsContextKey is the context key for verified token claims.
const ClaimsContextKey contextKey = "claims"

const msgInternalError = "Internal server error"

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db        *storage.DB
	issuer    auth.Issuer
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewHandlers creates a new Handlers instance. A nil publisher discards events.
func NewHandlers(db *storage.DB, issuer auth.Issuer, publisher events.Publisher, logger zerolog.Logger) *Handlers {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Handlers{db: db, issuer: issuer, publisher: publisher, logger: logger}
}

// ClaimsFromContext returns the verified token claims of the request, if any.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(auth.Claims)
	return c, ok
}

// Test is the liveness probe.
func (h *Handlers) Test(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Server is working")
}

// log returns the request-scoped logger, falling back to the handler logger
// when no logger was attached to the request.
func (h *Handlers) log(r *http.Request) *zerolog.Logger {
	l := hlog.FromRequest(r)
	if l.GetLevel() == zerolog.Disabled {
		return &h.logger
	}
	return l
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log(r).Error().Err(err).Str("op", op).Msg("request failed")
	writeMessage(w, http.StatusInternalServerError, msgInternalError)
}

func (h *Handlers) publish(r *http.Request, e events.Event) {
	if err := h.publisher.Publish(r.Context(), e); err != nil {
		h.log(r).Warn().Err(err).Str("action", e.Action).Int64("expense_id", e.ExpenseID).Msg("publish expense event")
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type dataResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

var errBadBody = errors.New("malformed JSON body")

const maxBodyBytes = 1 << 20

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched. Bodies over maxBodyBytes or with data after the first value are
// rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errBadBody
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errBadBody
	}
	return nil
}
