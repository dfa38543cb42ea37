package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/auth"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	UserContextKey contextKey = "user"
)

// ErrAccountDisabled is returned for a valid token whose account has since
// been disabled or removed.
var ErrAccountDisabled = errors.New("account disabled")

const accountCheckTimeout = 5 * time.Second

// AccountLookup resolves the account a token was issued to.
type AccountLookup interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
	accounts    AccountLookup
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// WithAccountCheck makes every authenticated request confirm that the account
// still exists and is enabled.
func (m *AuthMiddleware) WithAccountCheck(accounts AccountLookup) *AuthMiddleware {
	m.accounts = accounts
	return m
}

// ValidateToken validates a token and the account behind it. The live stream
// uses it for connections that carry the token outside the header.
func (m *AuthMiddleware) ValidateToken(token string) (*models.Claims, error) {
	claims, err := m.authService.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), accountCheckTimeout)
	defer cancel()
	if err := m.checkAccount(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *AuthMiddleware) checkAccount(ctx context.Context, claims *models.Claims) error {
	if m.accounts == nil {
		return nil
	}
	user, err := m.accounts.FindUserByID(ctx, claims.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrAccountDisabled
	}
	if err != nil {
		return err
	}
	if user.Disabled {
		return ErrAccountDisabled
	}
	return nil
}

// Authenticate validates JWT tokens and adds user context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication for certain endpoints
		if shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// Extract token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		token, err := m.authService.ExtractTokenFromHeader(authHeader)
		if err != nil {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			log.WithError(err).WithField("path", r.URL.Path).Debug("Rejected token")
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if err := m.checkAccount(r.Context(), claims); err != nil {
			if errors.Is(err, ErrAccountDisabled) {
				log.WithField("user_id", claims.UserID).Info("Rejected token for disabled account")
				http.Error(w, "Account disabled", http.StatusUnauthorized)
				return
			}
			log.WithError(err).WithField("user_id", claims.UserID).Error("Failed to check account")
			http.Error(w, "Authentication unavailable", http.StatusServiceUnavailable)
			return
		}

		// Add user context to request
		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission middleware checks if the user has the required permission
func (m *AuthMiddleware) RequirePermission(requiredAction string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(UserContextKey).(*models.Claims)
			if !ok {
				http.Error(w, "User context not found", http.StatusUnauthorized)
				return
			}

			// Create a temporary user object to check permissions
			user := &models.User{
				Role: claims.Role,
			}

			if !user.HasPermission(requiredAction) {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

// shouldSkipAuth determines if authentication should be skipped for a given path.
// The live stream authenticates its own sessions from the token query parameter.
func shouldSkipAuth(path string) bool {
	skipPaths := []string{
		"/api/customer-details",
		"/api/auth/login",
		"/api/live/",
		"/health",
		"/metrics",
	}

	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// RateLimitMiddleware provides basic rate limiting
type RateLimitMiddleware struct {
	requests map[string][]int64 // IP -> timestamps
	mu       sync.RWMutex       // Mutex for thread-safe access
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{
		requests: make(map[string][]int64),
	}
}

// RateLimit applies rate limiting based on IP address. A non-positive
// maxRequests disables the limit.
func (m *RateLimitMiddleware) RateLimit(maxRequests int, windowSeconds int) func(http.Handler) http.Handler {
	if maxRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get client IP
			clientIP := getClientIP(r)

			// Clean old requests outside the window
			now := time.Now().Unix()
			windowStart := now - int64(windowSeconds)

			// Use write lock for map operations
			m.mu.Lock()

			if timestamps, exists := m.requests[clientIP]; exists {
				var validTimestamps []int64
				for _, ts := range timestamps {
					if ts >= windowStart {
						validTimestamps = append(validTimestamps, ts)
					}
				}
				m.requests[clientIP] = validTimestamps
			}

			// Check if rate limit exceeded
			if len(m.requests[clientIP]) >= maxRequests {
				m.mu.Unlock()
				log.WithFields(log.Fields{"ip": clientIP, "path": r.URL.Path}).Warn("Rate limit exceeded")
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			// Add current request
			m.requests[clientIP] = append(m.requests[clientIP], now)

			// Release lock
			m.mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check for forwarded headers first
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	// Fall back to remote address
	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}
