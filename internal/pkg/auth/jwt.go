package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/schoolcore/internal/app/models"
)

// JWT errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid token format")
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey   string
	TokenIssuer string
}

// JWTService issues and validates actor tokens. Logins happen elsewhere;
// GenerateToken exists for service accounts and the demo seed.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// Claims carries the actor a request runs as.
type Claims struct {
	UserID    int64           `json:"userId"`
	SchoolID  int64           `json:"schoolId"`
	UserType  models.UserType `json:"userType"`
	TeacherID *int64          `json:"teacherId,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the actor passed to the services.
func (c *Claims) Actor() models.Actor {
	return models.Actor{
		UserID:    c.UserID,
		SchoolID:  c.SchoolID,
		UserType:  c.UserType,
		TeacherID: c.TeacherID,
	}
}

// GenerateToken signs an HS256 token for the actor valid for ttl.
func (s *JWTService) GenerateToken(actor models.Actor, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:    actor.UserID,
		SchoolID:  actor.SchoolID,
		UserType:  actor.UserType,
		TeacherID: actor.TeacherID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   fmt.Sprintf("%d", actor.UserID),
			ID:        uuid.New().String(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ValidateToken parses the token and checks signature, expiry and actor fields.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.TokenIssuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 || claims.SchoolID <= 0 {
		return nil, ErrInvalidToken
	}
	switch claims.UserType {
	case models.UserTypeAdmin, models.UserTypeTeacher, models.UserTypeStudent:
	default:
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", ErrInvalidFormat
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), nil
	}
	return authHeader, nil
}
