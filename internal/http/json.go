package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/target/prreview-api/internal/domain/review"
	apperrors "github.com/target/prreview-api/internal/errors"
)

// maxRequestBodyBytes bounds decoded request bodies.
const maxRequestBodyBytes = 64 * 1024

const retryAfterSeconds = "5"

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// Client disconnects cannot be recovered from here.
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

// WriteServiceError maps a service error onto a status code and writes it.
// Internal failures hide their cause from the client; transient ones carry Retry-After.
func WriteServiceError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		err = errors.New(http.StatusText(status))
	}
	if code.Transient() {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	WriteError(w, ErrorParams{Code: status, ErrCode: string(code), Err: err})
}

func statusFor(err error) (int, apperrors.ErrorCode) {
	code := apperrors.CodeOf(err)
	switch {
	case code == "" && errors.Is(err, review.ErrInvalidRequest):
		code = apperrors.ErrCodeValidation
	case code == "" && errors.Is(err, review.ErrJobNotFound):
		code = apperrors.ErrCodeNotFound
	}
	switch code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest, code
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, code
	case apperrors.ErrCodeConflict:
		return http.StatusConflict, code
	case apperrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable, code
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, code
	}
	return http.StatusInternalServerError, apperrors.ErrCodeInternal
}
