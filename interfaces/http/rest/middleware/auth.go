package middleware

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"

	"journey-backend/infrastructure/config"
	"journey-backend/pkg/auth"
	"journey-backend/pkg/common"

	"go.uber.org/zap"
)

// Authenticate creates an authentication middleware with JWT validation
func Authenticate() func(next http.Handler) http.Handler {
	// In Lambda, API Gateway has already validated the token
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return AuthenticateForLambda()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		jwtSecret := os.Getenv("JWT_SECRET")
		if jwtSecret == "" {
			jwtSecret = "development-secret-change-in-production"
		}
		cfg = &config.Config{
			JWTSecret: jwtSecret,
			JWTIssuer: "journey-backend",
		}
	}

	jwtConfig := auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
		Audience:      []string{"journey-api"},
	}

	validator, err := auth.NewJWTValidator(jwtConfig)
	if err != nil {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respondUnauthorized(w, "Authentication system error")
			})
		}
	}

	return authenticateWith(validator, nil)
}

// AuthenticateWithConfig creates an authentication middleware with an
// explicit validator, used by the DI container.
func AuthenticateWithConfig(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return authenticateWith(validator, logger)
}

func authenticateWith(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(100)     // per IP per minute
	userLimiter := auth.NewUserRateLimiter(200) // per user per minute

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, _ := ipLimiter.Allow(r.Context(), clientIP)
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			token := extractToken(r)
			if token == "" {
				respondUnauthorized(w, "Missing authentication token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				if logger != nil {
					logger.Warn("Invalid token",
						zap.Error(err),
						zap.String("ip", clientIP),
						zap.String("path", r.URL.Path),
					)
				}
				switch err {
				case auth.ErrExpiredToken:
					respondUnauthorized(w, "Token has expired")
				case auth.ErrInvalidSignature:
					respondUnauthorized(w, "Invalid token signature")
				default:
					respondUnauthorized(w, "Invalid token")
				}
				return
			}

			allowed, _ = userLimiter.Allow(r.Context(), claims.UserID)
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "User rate limit exceeded")
				return
			}

			userCtx := &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			}

			ctx := auth.SetUserInContext(r.Context(), userCtx)
			ctx = common.WithUserID(ctx, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthenticateForLambda trusts the user context headers set by the Lambda
// handler after the API Gateway JWT authorizer has run.
func AuthenticateForLambda() func(next http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(100)
	userLimiter := auth.NewUserRateLimiter(200)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, _ := ipLimiter.Allow(r.Context(), clientIP)
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			if r.Header.Get("X-API-Gateway-Authorized") != "true" {
				respondUnauthorized(w, "Request not authorized by API Gateway")
				return
			}

			userID, err := strconv.Atoi(r.Header.Get("X-User-ID"))
			if err != nil || userID <= 0 {
				respondUnauthorized(w, "Missing user context from API Gateway")
				return
			}

			allowed, _ = userLimiter.Allow(r.Context(), userID)
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "User rate limit exceeded")
				return
			}

			roles := []string{"authenticated"}
			if userRoles := r.Header.Get("X-User-Roles"); userRoles != "" {
				roles = strings.Split(userRoles, ",")
			}

			userCtx := &auth.UserContext{
				UserID: userID,
				Email:  r.Header.Get("X-User-Email"),
				Roles:  roles,
			}

			ctx := auth.SetUserInContext(r.Context(), userCtx)
			ctx = common.WithUserID(ctx, userID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the JWT from the Authorization header or auth cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
		return authHeader
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}

	return ""
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, message)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    code,
	})
}
