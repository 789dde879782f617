package middleware

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-pos/i18n"
)

// Lang resolves the response language (query > cookie > Accept-Language)
// and stores it in the request context. A language picked through the
// query string is remembered in a cookie for ~30 days.
func Lang(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil {
			lang = strings.ToLower(c.Value)
		}
		if ql := strings.ToLower(r.URL.Query().Get("lang")); i18n.Supported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: "lang", Value: lang, Path: "/", MaxAge: 86400 * 30})
		}
		if !i18n.Supported(lang) {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
