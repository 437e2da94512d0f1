package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tapstampr/internal/domain"
	"tapstampr/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// allowedAlgorithms guards against algorithm confusion; only asymmetric keys from JWKS
var allowedAlgorithms = []string{"RS256", "ES256"}

// JWKSVerifier implements JWTVerifier against a set of public keys
type JWKSVerifier struct {
	keyFunc jwt.Keyfunc
	logger  *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from a JWKS endpoint.
// keyfunc v3 caches the keys and refreshes them based on HTTP cache headers.
func NewJWTVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)
	return NewVerifierWithKeyfunc(jwks.Keyfunc, logger), nil
}

// NewVerifierWithKeyfunc creates a verifier over an explicit key lookup
func NewVerifierWithKeyfunc(keyFunc jwt.Keyfunc, logger *slog.Logger) *JWKSVerifier {
	return &JWKSVerifier{
		keyFunc: keyFunc,
		logger:  logger,
	}
}

// VerifyToken validates a JWT token and extracts its claims.
// Returns domain.ErrUnauthorized for any rejection.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.UserClaims{}, v.keyFunc,
		jwt.WithValidMethods(allowedAlgorithms))
	if err != nil {
		v.logger.Debug("token parse failed", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}

	if !token.Valid {
		v.logger.Debug("token is invalid after parsing")
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	// Anonymous sessions get no folder namespace
	if claims.Role == "anon" || claims.IsAnonymous {
		v.logger.Warn("anonymous token rejected", "user_id", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close releases resources held by the verifier.
// keyfunc v3 manages its own refresh goroutine, so this only logs.
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
