package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/go-pos/httpx"
	"github.com/diewo77/go-pos/i18n"
	"github.com/diewo77/go-pos/internal/middleware"
	"github.com/diewo77/go-pos/internal/services"
	"github.com/diewo77/go-pos/validation"
)

const maxBodyBytes = 1 << 20

// writeError answers with the envelope matching err. Unexpected errors are
// logged in full and reported to the client as a generic message.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	lang := i18n.LangFrom(r.Context())
	var ae *services.AppError
	if !errors.As(err, &ae) || ae.Kind == services.KindUnexpected {
		log.Error("request failed",
			"err", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFrom(r.Context()),
		)
		httpx.JSONError(w, http.StatusInternalServerError, i18n.T(lang, "internal_error"), nil)
		return
	}

	msg := i18n.T(lang, ae.Code)
	if ae.Message != "" && lang == i18n.DefaultLang {
		msg = ae.Message
	}
	var details any = ae.Details
	if v, ok := ae.Details.(validation.Violations); ok {
		details = i18n.TranslateAll(lang, v)
	}
	httpx.JSONError(w, ae.Status(), msg, details)
}

// fail answers a client error identified by an i18n code.
func fail(w http.ResponseWriter, r *http.Request, status int, code string) {
	httpx.JSONError(w, status, i18n.T(i18n.LangFrom(r.Context()), code), nil)
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

// pathID parses the {id} wildcard as a positive integer.
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryInt returns the integer query parameter name, or 0 when absent or
// malformed.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}
