package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders  = "Authorization, Content-Type, X-Requested-With, X-Request-ID"
	allowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	exposeHeaders = "Content-Disposition, X-Cache, X-Request-ID"
	maxAgeSeconds = "600"
)

// Policy lists the browser origins allowed to call the API. An empty policy admits every origin.
type Policy struct {
	origins map[string]struct{}
}

// NewPolicy normalises the configured origins, ignoring blanks and trailing slashes.
func NewPolicy(allowed []string) Policy {
	origins := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = normalise(origin)
		if origin == "" {
			continue
		}
		origins[origin] = struct{}{}
	}
	return Policy{origins: origins}
}

// Open reports whether every origin is admitted.
func (p Policy) Open() bool {
	return len(p.origins) == 0
}

// Allows reports whether origin may read responses.
func (p Policy) Allows(origin string) bool {
	if p.Open() {
		return true
	}
	_, ok := p.origins[normalise(origin)]
	return ok
}

// Handler answers preflight requests and decorates responses with CORS headers.
// Timetable exports need Content-Disposition exposed to browser clients.
func (p Policy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		switch origin := c.GetHeader("Origin"); {
		case origin != "" && p.Allows(origin):
			header.Set("Access-Control-Allow-Origin", origin)
		case origin == "" && p.Open():
			header.Set("Access-Control-Allow-Origin", "*")
		}

		header.Set("Vary", "Origin")
		header.Set("Access-Control-Allow-Credentials", "true")
		header.Set("Access-Control-Allow-Headers", allowHeaders)
		header.Set("Access-Control-Allow-Methods", allowMethods)
		header.Set("Access-Control-Expose-Headers", exposeHeaders)
		header.Set("Access-Control-Max-Age", maxAgeSeconds)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// New builds the middleware for the configured origins.
func New(allowed []string) gin.HandlerFunc {
	return NewPolicy(allowed).Handler()
}

func normalise(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}
