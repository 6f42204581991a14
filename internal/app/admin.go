package app

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
)

// AdminTokenHeader carries the admin token on destructive requests.
const AdminTokenHeader = "X-Admin-Token"

// AdminGuard requires a token matching the bcrypt hash. An empty hash
// leaves the routes open.
func AdminGuard(hash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if hash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AdminTokenHeader)
			if token == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
				logger.Warn("admin token rejected", slog.String("path", r.URL.Path))
				httpx.RespondError(w, httpx.ErrUnauthorized, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
