// Package i18n translates the short codes carried by API errors into
// human-readable messages.
package i18n

import (
	"context"
	"strings"
)

// DefaultLang is used when nothing better can be detected.
const DefaultLang = "en"

var catalog = map[string]map[string]string{
	"en": {
		"required":              "Required",
		"must_be_positive":      "Must be greater than zero",
		"must_not_be_negative":  "Must not be negative",
		"invalid_choice":        "Invalid value",
		"out_of_range":          "Out of range",
		"too_long":              "Too long",
		"validation_failed":     "Validation failed",
		"invalid_json":          "Request body is not valid JSON",
		"invalid_id":            "Invalid identifier",
		"invalid_range":         "Invalid range parameter. Use day, week, or month.",
		"invoice_not_found":     "Invoice not found",
		"product_not_found":     "Product not found",
		"insufficient_stock":    "Insufficient stock",
		"internal_error":        "Internal server error",
		"request_timeout":       "Request timed out",
		"method_not_allowed":    "Method not allowed",
		"not_found":             "Resource not found",
	},
	"fr": {
		"required":              "Requis",
		"must_be_positive":      "Doit être supérieur à zéro",
		"must_not_be_negative":  "Ne doit pas être négatif",
		"invalid_choice":        "Valeur invalide",
		"out_of_range":          "Hors limites",
		"too_long":              "Trop long",
		"validation_failed":     "Validation échouée",
		"invalid_json":          "Le corps de la requête n'est pas un JSON valide",
		"invalid_id":            "Identifiant invalide",
		"invalid_range":         "Paramètre range invalide. Utilisez day, week ou month.",
		"invoice_not_found":     "Facture introuvable",
		"product_not_found":     "Produit introuvable",
		"insufficient_stock":    "Stock insuffisant",
		"internal_error":        "Erreur interne du serveur",
		"request_timeout":       "Délai de la requête dépassé",
		"method_not_allowed":    "Méthode non autorisée",
		"not_found":             "Ressource introuvable",
	},
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// T returns the message for code in lang, falling back to the default
// language and finally to the code itself.
func T(lang, code string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalog[DefaultLang][code]; ok {
		return s
	}
	return code
}

// TranslateAll maps every value of codes through T.
func TranslateAll(lang string, codes map[string]string) map[string]string {
	if len(codes) == 0 {
		return nil
	}
	out := make(map[string]string, len(codes))
	for k, c := range codes {
		out[k] = T(lang, c)
	}
	return out
}

// DetectLanguage picks the first supported language from an
// Accept-Language header value.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if Supported(base) {
			return base
		}
	}
	return DefaultLang
}

type langKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFrom returns the request language or DefaultLang.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(langKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultLang
}
