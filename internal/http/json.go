package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/target/aihub-dashboard/internal/domain/chat"
	apperrors "github.com/target/aihub-dashboard/internal/errors"
	"github.com/target/aihub-dashboard/internal/service"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

const maxJSONBody = 64 << 10

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Client disconnects can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes the JSON error envelope {"error", "message"}.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	msg := http.StatusText(p.Code)
	if p.Err != nil {
		msg = p.Err.Error()
	}
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": msg})
}

type serviceErrorMapping struct {
	target  error
	code    apperrors.ErrorCode
	errCode string
	message string
}

// serviceErrors is checked in order; the first match wins.
//
//nolint:gochecknoglobals // static read-only lookup
var serviceErrors = []serviceErrorMapping{
	{service.ErrProviderFailed, apperrors.ErrCodeUpstream, "chat_failed", "The chat provider failed. You were not charged."},
	{service.ErrInsufficientCredits, apperrors.ErrCodePaymentRequired, "insufficient_credits", "Not enough credits."},
	{service.ErrRateLimited, apperrors.ErrCodeRateLimited, "rate_limited", "Too many messages. Please slow down."},
	{service.ErrUnknownProvider, apperrors.ErrCodeValidation, "unknown_provider", "Unknown chat provider."},
	{chat.ErrEmptyMessage, apperrors.ErrCodeValidation, "invalid_message", "Message is required."},
	{chat.ErrMessageTooLong, apperrors.ErrCodeValidation, "invalid_message", "Message is too long."},
	{service.ErrInvalidAmount, apperrors.ErrCodeValidation, "invalid_amount", "Invalid credit amount."},
	{service.ErrSessionExpired, apperrors.ErrCodeUnauthorized, "authentication_required", "Session expired."},
}

// classifyError maps a service error onto an AppError and a stable envelope code.
func classifyError(err error) (*apperrors.AppError, string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return apperrors.Wrap(err, m.code, m.message), m.errCode
		}
	}
	var appErr *apperrors.AppError
	if errors.As(apperrors.FromContext(err), &appErr) {
		return appErr, string(appErr.Code)
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Something went wrong. Please try again."), "internal_error"
}

// WriteServiceError writes the JSON envelope for err with the mapped status.
// Internal causes are not echoed to the client.
func WriteServiceError(w http.ResponseWriter, err error) {
	appErr, errCode := classifyError(err)
	WriteError(w, ErrorParams{Code: appErr.Status(), ErrCode: errCode, Err: errors.New(appErr.Message)})
}
