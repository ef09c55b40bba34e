// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
)

// Token service error constants
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenService handles JWT token generation and validation for users and
// admins. The two audiences use distinct subject claims so an admin token
// never passes user validation and vice versa.
type TokenService interface {
	GenerateUserTokens(userID uint) (accessToken, refreshToken string, err error)
	ValidateUserToken(token string) (*UserTokenClaims, error)
	RefreshUserToken(refreshToken string) (newAccessToken, newRefreshToken string, err error)
	GenerateAdminTokens(adminID uint) (accessToken, refreshToken string, err error)
	ValidateAdminToken(token string) (*AdminTokenClaims, error)
}

// UserTokenClaims represents the claims in a user JWT
type UserTokenClaims struct {
	UserID    uint      `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"` // "access" or "refresh"
	TokenID   string    `json:"jti"`
}

// AdminTokenClaims represents claims for admin JWTs
type AdminTokenClaims struct {
	AdminID   uint      `json:"admin_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"`
	TokenID   string    `json:"jti"`
}

// TokenServiceImpl implements TokenService
type TokenServiceImpl struct {
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	signingMethod   jwt.SigningMethod
	privateKey      *rsa.PrivateKey
	publicKey       *rsa.PublicKey
	secretKey       []byte
	useRSAKeys      bool
	issuer          string
	audience        string
}

// NewTokenService creates a new token service
func NewTokenService(accessTokenTTL, refreshTokenTTL time.Duration, issuer, audience string, useRSAKeys bool, privateKeyPEM, publicKeyPEM, secretKey string) (TokenService, error) {
	s := &TokenServiceImpl{
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		useRSAKeys:      useRSAKeys,
		issuer:          issuer,
		audience:        audience,
	}

	if useRSAKeys {
		privateKey, publicKey, err := parseRSAKeys(privateKeyPEM, publicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA keys: %w", err)
		}
		s.privateKey = privateKey
		s.publicKey = publicKey
		s.signingMethod = jwt.SigningMethodRS256
	} else {
		if secretKey == "" {
			return nil, fmt.Errorf("secret key is required when not using RSA keys")
		}
		s.secretKey = []byte(secretKey)
		s.signingMethod = jwt.SigningMethodHS256
	}

	return s, nil
}

// parseRSAKeys parses RSA private and public keys from PEM format
func parseRSAKeys(privateKeyPEM, publicKeyPEM string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if privateKeyPEM == "" || publicKeyPEM == "" {
		return nil, nil, fmt.Errorf("both private and public keys are required")
	}

	privateKeyBlock, _ := pem.Decode([]byte(privateKeyPEM))
	if privateKeyBlock == nil {
		return nil, nil, fmt.Errorf("failed to decode private key")
	}
	privateKey, err := x509.ParsePKCS1PrivateKey(privateKeyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKeyBlock, _ := pem.Decode([]byte(publicKeyPEM))
	if publicKeyBlock == nil {
		return nil, nil, fmt.Errorf("failed to decode public key")
	}
	publicKey, err := x509.ParsePKIXPublicKey(publicKeyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, nil, fmt.Errorf("public key is not RSA")
	}

	return privateKey, rsaPublicKey, nil
}

// GenerateUserTokens generates access and refresh tokens for a user
func (s *TokenServiceImpl) GenerateUserTokens(userID uint) (accessToken, refreshToken string, err error) {
	return s.generateTokenPair("user_id", userID)
}

// GenerateAdminTokens generates access and refresh tokens for an admin
func (s *TokenServiceImpl) GenerateAdminTokens(adminID uint) (accessToken, refreshToken string, err error) {
	return s.generateTokenPair("admin_id", adminID)
}

func (s *TokenServiceImpl) generateTokenPair(subjectClaim string, subjectID uint) (accessToken, refreshToken string, err error) {
	now := utils.UTCNow()

	accessTokenID, err := generateTokenID()
	if err != nil {
		return "", "", err
	}
	refreshTokenID, err := generateTokenID()
	if err != nil {
		return "", "", err
	}

	accessToken, err = s.generateToken(jwt.MapClaims{
		subjectClaim: subjectID,
		"token_type": "access",
		"jti":        accessTokenID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.accessTokenTTL).Unix(),
		"iss":        s.issuer,
		"aud":        s.audience,
	})
	if err != nil {
		return "", "", err
	}

	refreshToken, err = s.generateToken(jwt.MapClaims{
		subjectClaim: subjectID,
		"token_type": "refresh",
		"jti":        refreshTokenID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.refreshTokenTTL).Unix(),
		"iss":        s.issuer,
		"aud":        s.audience,
	})
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateUserToken validates a user JWT and returns its claims
func (s *TokenServiceImpl) ValidateUserToken(token string) (*UserTokenClaims, error) {
	subjectID, tokenType, tokenID, issuedAt, expiresAt, err := s.parseAndValidate(token, "user_id")
	if err != nil {
		return nil, err
	}
	return &UserTokenClaims{
		UserID:    subjectID,
		TokenType: tokenType,
		TokenID:   tokenID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateAdminToken validates an admin JWT and returns admin-specific claims
func (s *TokenServiceImpl) ValidateAdminToken(token string) (*AdminTokenClaims, error) {
	subjectID, tokenType, tokenID, issuedAt, expiresAt, err := s.parseAndValidate(token, "admin_id")
	if err != nil {
		return nil, err
	}
	return &AdminTokenClaims{
		AdminID:   subjectID,
		TokenType: tokenType,
		TokenID:   tokenID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *TokenServiceImpl) parseAndValidate(token, subjectClaim string) (subjectID uint, tokenType, tokenID string, issuedAt, expiresAt time.Time, err error) {
	keyFunc := func(t *jwt.Token) (any, error) {
		if s.useRSAKeys {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.publicKey, nil
		}
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}

	parsedToken, err := jwt.Parse(token, keyFunc)
	if err != nil {
		if strings.Contains(err.Error(), "expired") || strings.Contains(err.Error(), "exp") {
			return 0, "", "", time.Time{}, time.Time{}, ErrTokenExpired
		}
		return 0, "", "", time.Time{}, time.Time{}, ErrTokenInvalid
	}
	if !parsedToken.Valid {
		return 0, "", "", time.Time{}, time.Time{}, ErrTokenInvalid
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", "", time.Time{}, time.Time{}, ErrTokenInvalid
	}

	rawSubject, ok := claims[subjectClaim].(float64)
	if !ok {
		return 0, "", "", time.Time{}, time.Time{}, ErrTokenInvalid
	}
	tokenType, ok = claims["token_type"].(string)
	if !ok {
		return 0, "", "", time.Time{}, time.Time{}, ErrTokenInvalid
	}
	tokenID, ok = claims["jti"].(string)
	if !ok {
		return 0, "", "", time.Time{}, time.Time{}, ErrTokenInvalid
	}
	rawIssuedAt, ok := claims["iat"].(float64)
	if !ok {
		return 0, "", "", time.Time{}, time.Time{}, ErrTokenInvalid
	}
	rawExpiresAt, ok := claims["exp"].(float64)
	if !ok {
		return 0, "", "", time.Time{}, time.Time{}, ErrTokenInvalid
	}

	expiresAt = time.Unix(int64(rawExpiresAt), 0)
	if utils.UTCNow().After(expiresAt) {
		return 0, "", "", time.Time{}, time.Time{}, ErrTokenExpired
	}

	return uint(rawSubject), tokenType, tokenID, time.Unix(int64(rawIssuedAt), 0), expiresAt, nil
}

// RefreshUserToken generates new tokens using a refresh token
func (s *TokenServiceImpl) RefreshUserToken(refreshToken string) (newAccessToken, newRefreshToken string, err error) {
	claims, err := s.ValidateUserToken(refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", err)
	}
	if claims.TokenType != "refresh" {
		return "", "", fmt.Errorf("token is not a refresh token")
	}

	return s.GenerateUserTokens(claims.UserID)
}

// generateToken creates a signed JWT token
func (s *TokenServiceImpl) generateToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(s.signingMethod, claims)

	if s.useRSAKeys {
		return token.SignedString(s.privateKey)
	}
	return token.SignedString(s.secretKey)
}

// generateTokenID generates a unique token ID
func generateTokenID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", bytes), nil
}
