package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const docsPrefix = "/docs"

const (
	// JSON only: nothing the API returns should ever load subresources.
	apiCSP = "default-src 'none'; frame-ancestors 'none'"

	// The docs page pulls Swagger UI from unpkg and bootstraps it inline.
	docsCSP = "default-src 'self'; base-uri 'none'; frame-ancestors 'none'; object-src 'none'; connect-src 'self'; " +
		"img-src 'self' data: https:; font-src 'self' https://unpkg.com data:; " +
		"style-src 'self' 'unsafe-inline' https://unpkg.com; script-src 'self' 'unsafe-inline' https://unpkg.com"
)

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")

		csp := apiCSP
		if strings.HasPrefix(c.Request.URL.Path, docsPrefix) {
			csp = docsCSP
		}
		h.Set("Content-Security-Policy", csp)

		// only meaningful once the client reached us over TLS
		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
