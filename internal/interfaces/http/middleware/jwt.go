package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/enrolment/backend/internal/infrastructure/auth"
	"github.com/enrolment/backend/internal/infrastructure/logger"
	"github.com/enrolment/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// JWTClaimsKey holds *auth.Claims in the gin context
	JWTClaimsKey = "jwt_claims"
	// JWTSubjectKey holds the token subject in the gin context
	JWTSubjectKey = "jwt_subject"

	bearerPrefix = "Bearer "
)

// TokenValidator verifies a bearer token
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// JWTConfig configures JWTAuth
type JWTConfig struct {
	Validator TokenValidator
	// Blacklist is optional
	Blacklist auth.TokenBlacklist
	// SkipPaths bypass authentication (exact match)
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth requires a valid bearer token. The token subject is attached to
// the request logger.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) || strings.TrimSpace(header[len(bearerPrefix):]) == "" {
			abortUnauthorized(c, log, dto.ErrCodeUnauthorized, "Authentication required", nil)
			return
		}

		claims, err := cfg.Validator.Validate(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, log, dto.ErrCodeTokenExpired, "Token has expired", err)
			} else {
				abortUnauthorized(c, log, dto.ErrCodeTokenInvalid, "Invalid token", err)
			}
			return
		}

		if cfg.Blacklist != nil && claims.ID != "" {
			revoked, err := cfg.Blacklist.IsRevoked(c.Request.Context(), claims.ID)
			switch {
			case err != nil:
				// fail open: the signature and expiry were already verified
				log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
			case revoked:
				abortUnauthorized(c, log, dto.ErrCodeTokenRevoked, "Token has been revoked", auth.ErrTokenRevoked)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTSubjectKey, claims.Subject)
		ctx := logger.WithSubject(c.Request.Context(), claims.Subject)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, code, message string, err error) {
	log.Debug("JWT authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("code", code),
		zap.Error(err),
	)
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims returns the claims set by JWTAuth, or nil
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// RequireRole rejects tokens that lack role. It must run after JWTAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil || !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Missing required role: "+role, GetRequestID(c)))
			return
		}
		c.Next()
	}
}
