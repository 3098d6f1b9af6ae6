package middleware

import (
	"net/http"
	"strings"

	"nexus-project/collaboration-service/logging"
	"nexus-project/collaboration-service/utils"
)

// JWTAuthMiddleware validates the gateway-issued bearer token and injects
// the authenticated user ID into the request headers. Handlers read the
// acting user from "User-ID" and never look at credentials themselves.
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		if claims.UserID == "" {
			http.Error(w, "Missing user identity in token", http.StatusUnauthorized)
			return
		}

		r.Header.Set("User-ID", claims.UserID)
		next.ServeHTTP(w, r)
	})
}
