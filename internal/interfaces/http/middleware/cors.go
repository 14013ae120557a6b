// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-api/internal/config"
)

// CORS returns a middleware that answers cross-origin requests against
// the configured allow-list. Header values that never change per
// request are joined once up front.
func CORS(cfg *config.Config) gin.HandlerFunc {
	allowMethods := strings.Join(cfg.Security.CORSAllowedMethods, ", ")
	allowHeaders := strings.Join(cfg.Security.CORSAllowedHeaders, ", ")
	matcher := newOriginMatcher(cfg.Security.CORSAllowedOrigins)

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && matcher.allows(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", allowMethods)
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// originMatcher holds exact origins and wildcard domain suffixes split
// apart at construction. A lone "*" allows everything.
type originMatcher struct {
	any      bool
	exact    map[string]struct{}
	suffixes []string
}

func newOriginMatcher(allowed []string) *originMatcher {
	m := &originMatcher{exact: map[string]struct{}{}}
	for _, entry := range allowed {
		switch {
		case entry == "*":
			m.any = true
		case strings.HasPrefix(entry, "*."):
			// Keep the dot so "*.example.com" never matches
			// "evilexample.com".
			m.suffixes = append(m.suffixes, entry[1:])
		default:
			m.exact[entry] = struct{}{}
		}
	}
	return m
}

func (m *originMatcher) allows(origin string) bool {
	if m.any {
		return true
	}
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, suffix := range m.suffixes {
		if strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
