package logging

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// untracked paths are logged without any client identity.
var untracked = []string{"/static/", "/images/", "/favicon", "/healthz", "/metrics"}

// Anonymizer hashes client IPs so logs can correlate a visitor's requests
// without storing the address.
type Anonymizer struct {
	salt string
}

// NewAnonymizer uses salt, or a random one when empty.
func NewAnonymizer(salt string) *Anonymizer {
	if salt == "" {
		b := make([]byte, 16)
		if _, err := rand.Read(b); err == nil {
			salt = hex.EncodeToString(b)
		}
	}
	return &Anonymizer{salt: salt}
}

// Hash returns a short salted digest of ip.
func (a *Anonymizer) Hash(ip string) string {
	sum := sha256.Sum256([]byte(ip + a.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Middleware logs one line per request. Static and operational paths, and
// requests sending DNT: 1, carry no client hash.
func Middleware(log *zap.Logger, anon *Anonymizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if trackable(c.Request, path) {
			fields = append(fields, zap.String("client", anon.Hash(c.ClientIP())))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case strings.HasPrefix(path, "/static/"):
			log.Debug("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Recovery turns panics into 500s and logs them.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"))
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

func trackable(r *http.Request, path string) bool {
	if r.Header.Get("DNT") == "1" {
		return false
	}
	for _, prefix := range untracked {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}
