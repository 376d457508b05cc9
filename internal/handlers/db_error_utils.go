package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"classifiedsBack/internal/models"
)

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case models.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrPaymentVerificationFailed):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicatePackageName):
		return http.StatusConflict
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrPaymentInitiation):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorCode(err error) string {
	switch {
	case models.IsNotFound(err):
		return "not_found"
	case errors.Is(err, models.ErrValidation):
		return "validation_error"
	case errors.Is(err, models.ErrPaymentVerificationFailed):
		return "payment_verification_failed"
	case errors.Is(err, models.ErrDispatch):
		return "dispatch_error"
	case errors.Is(err, models.ErrPersistence):
		return "persistence_error"
	case errors.Is(err, models.ErrForbidden):
		return "forbidden"
	}
	return "internal_error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with {"message": ..., "error": "<text>"}.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	writeJSON(w, status, body)
}

// writeErrorObject answers with {"message": ..., "error": {"code", "detail"}}.
// Invoice endpoints use this shape.
func writeErrorObject(w http.ResponseWriter, status int, message string, err error) {
	detail := map[string]string{"code": errorCode(err)}
	if err != nil {
		detail["detail"] = err.Error()
	}
	writeJSON(w, status, map[string]any{"message": message, "error": detail})
}

func currentUser(r *http.Request) (int, string, bool) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok || userID <= 0 {
		return 0, "", false
	}
	role, _ := r.Context().Value("role").(string)
	return userID, role, true
}
