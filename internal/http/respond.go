package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JSBS07/gestor-finanzas/internal/core"
	"github.com/JSBS07/gestor-finanzas/internal/log"
	"github.com/JSBS07/gestor-finanzas/internal/services"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain errors to HTTP statuses: validation problems
// are 422 with a stable code, ownership violations 403, missing records
// 404, everything unexpected 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		logs := log.NewStructuredLogger(log.FromContext(r.Context()))
		logs.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Method+" "+r.URL.Path,
			log.NewFields())
		message = "internal error"
	}

	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func statusFor(err error) (int, string) {
	var derr *core.DescriptionError
	if errors.As(err, &derr) {
		return http.StatusUnprocessableEntity, string(derr.Code)
	}

	switch {
	case errors.Is(err, core.ErrMalformedAmount):
		return http.StatusUnprocessableEntity, "MALFORMED_AMOUNT"
	case errors.Is(err, core.ErrAmountOutOfRange):
		return http.StatusUnprocessableEntity, "AMOUNT_OUT_OF_RANGE"
	case errors.Is(err, core.ErrCategoryTypeMismatch):
		return http.StatusUnprocessableEntity, "CATEGORY_TYPE_MISMATCH"
	case errors.Is(err, core.ErrUnknownCategory):
		return http.StatusUnprocessableEntity, "UNKNOWN_CATEGORY"
	case errors.Is(err, core.ErrUnknownType):
		return http.StatusUnprocessableEntity, "UNKNOWN_TYPE"
	case errors.Is(err, core.ErrUnknownState):
		return http.StatusUnprocessableEntity, "UNKNOWN_STATE"
	case errors.Is(err, services.ErrPasswordTooShort):
		return http.StatusUnprocessableEntity, "PASSWORD_TOO_SHORT"
	case errors.Is(err, services.ErrPasswordMismatch):
		return http.StatusUnprocessableEntity, "PASSWORD_MISMATCH"
	case errors.Is(err, services.ErrPasswordUnchanged):
		return http.StatusUnprocessableEntity, "PASSWORD_UNCHANGED"
	case errors.Is(err, services.ErrWrongPassword):
		return http.StatusUnprocessableEntity, "WRONG_PASSWORD"
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, "EMAIL_TAKEN"
	case errors.Is(err, services.ErrInvalidLogin):
		return http.StatusUnauthorized, "INVALID_LOGIN"
	case errors.Is(err, services.ErrAdminImmutable):
		return http.StatusForbidden, "ADMIN_IMMUTABLE"
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
