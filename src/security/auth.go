package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/username/drivefinance/backend/src/config"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 12

	// APIKeyPrefix marks DriveFinance external API keys.
	APIKeyPrefix = "dfk_"
)

type AuthService struct {
	JWTSecret string
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{
		JWTSecret: secret,
	}
}

func (a *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *AuthService) CompareHashAndPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (a *AuthService) GenerateToken(userID string) (string, error) {
	if config.Cfg == nil {
		// Safeguard; LoadConfig runs at startup before any token is issued.
		return "", errors.New("configuration not loaded, cannot determine token expiry")
	}
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(config.Cfg.AccessTokenExpiry).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

func (a *AuthService) GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (a *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	})

	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		// Ensure 'sub' claim exists and is a string
		sub, ok := claims["sub"].(string)
		if !ok {
			return "", errors.New("invalid token: 'sub' claim missing or not a string")
		}
		return sub, nil
	}

	return "", errors.New("invalid token")
}

// GeneratedAPIKey is the one-time result of GenerateAPIKey. PlainKey is shown
// to the user exactly once; only Hash is persisted.
type GeneratedAPIKey struct {
	ID       string
	Prefix   string
	PlainKey string
	Hash     string
}

// GenerateAPIKey creates a new external API key of the form
// "dfk_<short id>.<secret>".
func (a *AuthService) GenerateAPIKey() (*GeneratedAPIKey, error) {
	id := uuid.NewString()

	secret := make([]byte, 24)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}

	prefix := APIKeyPrefix + id[:8]
	plain := prefix + "." + base64.RawURLEncoding.EncodeToString(secret)

	return &GeneratedAPIKey{
		ID:       id,
		Prefix:   prefix,
		PlainKey: plain,
		Hash:     HashAPIKey(plain),
	}, nil
}

// HashAPIKey returns the hex SHA-256 digest of a full API key string.
func HashAPIKey(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// ValidateAPIKeyFormat performs a cheap syntactic check before any lookup.
func ValidateAPIKeyFormat(key string) error {
	if !strings.HasPrefix(key, APIKeyPrefix) {
		return fmt.Errorf("api key must start with %q", APIKeyPrefix)
	}
	if !strings.Contains(key, ".") {
		return errors.New("malformed api key")
	}
	return nil
}
