package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/issuefeed/backend/pkg/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorBody is the 4xx/5xx payload shape from spec.md §7: "{detail: string}".
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError classifies err through apperr.KindOf and renders the
// sparse, non-leaking body spec.md §7 requires for 5xx responses.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	detail := "internal error"
	var appErr *apperr.Error
	if status < http.StatusInternalServerError && errors.As(err, &appErr) {
		detail = appErr.Detail
	}
	writeJSON(w, status, errorBody{Detail: detail})
}

// decodeJSON decodes r's body into dst and runs struct-tag validation,
// returning apperr.InvalidInput on either failure.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.InvalidInput("malformed request body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.InvalidInput(err.Error())
	}
	return nil
}
