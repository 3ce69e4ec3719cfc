package utils

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/entity"
)

const (
	HeaderUserIsGuest = "X-User-Is-Guest"
	HeaderUserOid     = "X-User-Oid"

	contextCaller  = "caller"
	contextIsGuest = "is_guest"
	contextUserOid = "user_oid"
)

func ExtractToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

func ParseToken(tokenString string, config *config.EnvConfig) (*jwt.Token, error) {
	secret := []byte(config.JWT.SecretKey)
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// IdentityFromClaims reads the caller id from the oid claim, falling back
// to user_id.
func IdentityFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, key := range []string{"oid", "user_id"} {
		if raw, ok := claims[key].(string); ok && raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return uuid.Nil, errors.New("invalid " + key + " format")
			}
			return id, nil
		}
	}
	return uuid.Nil, errors.New("token carries no oid or user_id claim")
}

// InjectCallerToContext exposes the caller to handlers and to anything that
// reads the forwarded identity headers.
func InjectCallerToContext(c *gin.Context, caller entity.Caller) {
	isGuest := "false"
	if caller.Class.IsGuest() {
		isGuest = "true"
	}

	c.Request.Header.Set(HeaderUserIsGuest, isGuest)
	c.Request.Header.Set(HeaderUserOid, caller.ID.String())

	c.Set(contextCaller, caller)
	c.Set(contextIsGuest, caller.Class.IsGuest())
	c.Set(contextUserOid, caller.ID.String())
}

func GetCallerFromContext(c *gin.Context) (entity.Caller, error) {
	value, ok := c.Get(contextCaller)
	if !ok {
		return entity.Caller{}, errors.New("caller is missing from context")
	}
	caller, ok := value.(entity.Caller)
	if !ok {
		return entity.Caller{}, errors.New("invalid caller type in context")
	}
	return caller, nil
}
