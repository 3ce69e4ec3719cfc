package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
	"github.com/tnqbao/gau-photo-share/utils"
)

// CallerMiddleware turns a valid bearer token into a registered caller. A
// request without a token is a guest with a fresh id; a bad token is
// rejected.
func CallerMiddleware(config *config.EnvConfig, metrics *infra.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := utils.ExtractToken(c)
		if tokenStr == "" {
			setGuest(c, metrics)
			c.Next()
			return
		}

		parsedToken, err := utils.ParseToken(tokenStr, config)
		if err != nil || !parsedToken.Valid {
			utils.JSON401(c, "Invalid token")
			c.Abort()
			return
		}

		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			utils.JSON401(c, "Invalid token claims")
			c.Abort()
			return
		}

		id, err := utils.IdentityFromClaims(claims)
		if err != nil {
			utils.JSON401(c, "Invalid claims: "+err.Error())
			c.Abort()
			return
		}

		utils.InjectCallerToContext(c, entity.Caller{Class: entity.CallerRegistered, ID: id})
		metrics.IncrementUserType(c.Request.Context(), string(entity.CallerRegistered))
		c.Next()
	}
}

// GuestMiddleware ignores any credentials.
func GuestMiddleware(metrics *infra.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		setGuest(c, metrics)
		c.Next()
	}
}

// RegisteredMiddleware must run after CallerMiddleware.
func RegisteredMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := utils.GetCallerFromContext(c)
		if err != nil || caller.Class.IsGuest() {
			utils.JSON401(c, "Authorization token is required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func setGuest(c *gin.Context, metrics *infra.Metrics) {
	utils.InjectCallerToContext(c, entity.Caller{Class: entity.CallerGuest, ID: uuid.New()})
	metrics.IncrementUserType(c.Request.Context(), string(entity.CallerGuest))
}
