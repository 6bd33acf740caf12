package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/driftboard/driftboard/internal/platform/errors/i18n"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = "en-US"

// httpErrorBody is the JSON error envelope returned by the HTTP boundary.
type httpErrorBody struct {
	Error httpErrorDetail `json:"error"`
}

type httpErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteHTTP converts a domain error into a JSON HTTP response.
// The response body carries the machine-readable code and a user-facing
// message localized for the given locale (an Accept-Language value is
// accepted); the internal message stays in logs only.
func WriteHTTP(w http.ResponseWriter, err error, locale string) {
	if err == nil {
		return
	}

	if locale == "" {
		locale = DefaultLocale
	}

	code := CodeUnknown
	metadata := map[string]string(nil)
	var appErr *Error
	if stderrors.As(err, &appErr) {
		code = appErr.Code
		metadata = appErr.Metadata
	}

	catalog := i18n.GetCatalog(locale)
	message := catalog.Format(string(code), metadata)
	if code == CodeUnknown {
		message = "an unexpected error occurred"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Language", catalog.Locale())
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(httpErrorBody{
		Error: httpErrorDetail{
			Code:    string(code),
			Message: message,
		},
	})
}
