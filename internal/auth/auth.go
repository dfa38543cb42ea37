package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrRevokedToken  = errors.New("token revoked")
	ErrInvalidEmail  = errors.New("invalid email")
	ErrUserDisabled  = errors.New("user disabled")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

const defaultSecret = "default-secret-key-change-in-production"

// Config holds token settings
type Config struct {
	Secret string
	Expiry time.Duration
}

// Service handles authentication operations
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewService creates a new authentication service
func NewService(cfg Config) (*Service, error) {
	secret := cfg.Secret
	if secret == "" {
		log.Warn("JWT_SECRET not set, using the built-in development secret")
		secret = defaultSecret
	}
	exp := cfg.Expiry
	if exp <= 0 {
		exp = 24 * time.Hour
	}

	return &Service{
		jwtSecret: []byte(secret),
		tokenExp:  exp,
		revoked:   make(map[string]time.Time),
	}, nil
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash
func (s *Service) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken generates a JWT token for a user
func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"jti":     uuid.NewString(),
		"exp":     now.Add(s.tokenExp).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	roleStr, ok := claims["role"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	jti, _ := claims["jti"].(string)
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	if s.isRevoked(jti) {
		return nil, ErrRevokedToken
	}

	return &models.Claims{
		UserID:  userID,
		Email:   email,
		Role:    models.Role(roleStr),
		TokenID: jti,
		Exp:     int64(exp),
	}, nil
}

// ExtractTokenFromHeader extracts token from Authorization header
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}

// SignIn checks credentials against the users collection and issues a token.
// Failures map to ErrInvalidEmail, ErrUserNotFound, ErrUserDisabled or
// ErrWrongPassword; anything else is a lookup failure.
func (s *Service) SignIn(ctx context.Context, users db.UserCollection, email, password string) (*models.LoginResponse, error) {
	email = strings.TrimSpace(email)
	if !models.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	user, err := users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.Disabled {
		return nil, ErrUserDisabled
	}
	if !s.CheckPassword(password, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	if err := users.UpdateLastLogin(ctx, user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	return &models.LoginResponse{Token: token, User: *user}, nil
}

// LoginMessage turns a SignIn error into the text shown on the login form.
func LoginMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email format"
	case errors.Is(err, ErrUserDisabled):
		return "Account disabled"
	case errors.Is(err, ErrUserNotFound):
		return "No user found with this email"
	case errors.Is(err, ErrWrongPassword):
		return "Incorrect password"
	default:
		return "Login failed. Please try again."
	}
}

// Revoke invalidates a token until it would have expired anyway.
func (s *Service) Revoke(claims *models.Claims) {
	if claims == nil || claims.TokenID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.TokenID] = time.Unix(claims.Exp, 0)
}

func (s *Service) isRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
// An empty email disables bootstrapping.
func (s *Service) EnsureAdmin(ctx context.Context, users db.UserCollection, email, password string) error {
	if email == "" {
		return nil
	}
	if !models.IsValidEmail(email) {
		return fmt.Errorf("bootstrap admin: %w", ErrInvalidEmail)
	}
	if password == "" {
		return errors.New("bootstrap admin: ADMIN_PASSWORD is required")
	}

	_, err := users.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	user := models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		DisplayName:  "Administrator",
		Role:         models.RoleAdmin,
	}
	if err := users.InsertUser(ctx, user); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	log.WithField("email", user.Email).Info("Created bootstrap admin account")
	return nil
}
