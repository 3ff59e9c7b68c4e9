package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// English first so it wins when nothing matches.
var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Chinese,
})

// Locale negotiates the response language from the Accept-Language header.
// The service speaks English and Chinese.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tags, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
		tag, _, _ := localeMatcher.Match(tags...)
		base, _ := tag.Base()
		ctx := context.WithValue(r.Context(), localeContextKey{}, base.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LocaleFromContext returns the negotiated language code, "en" by default.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok {
		return v
	}
	return "en"
}
