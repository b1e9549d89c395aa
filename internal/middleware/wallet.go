package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/web3store/gateway/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// walletKey is the context key for the wallet address proven by a token.
const walletKey contextKey = "wallet"

// VerifiedWallet returns the wallet address the caller proved ownership of,
// or "" when wallet verification is disabled.
func VerifiedWallet(ctx context.Context) string {
	w, _ := ctx.Value(walletKey).(string)
	return w
}

// RequireWallet returns middleware that validates a Bearer JWT and injects
// its walletAddress claim into the request context. Handlers compare that
// claim against the wallet a request operates on.
//
// The upstream service historically trusted the supplied walletAddress at
// face value; this middleware closes that gap when a secret is configured.
func RequireWallet(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "invalid authorization header format")
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				response.Unauthorized(w, "invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				response.Unauthorized(w, "invalid token claims")
				return
			}

			wallet, _ := claims["walletAddress"].(string)
			if wallet == "" {
				response.Unauthorized(w, "token carries no walletAddress claim")
				return
			}

			ctx := context.WithValue(r.Context(), walletKey, wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
