package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/circadia-app/circadia/backend/internal/apierror"
	"github.com/circadia-app/circadia/backend/internal/logger"
	"github.com/circadia-app/circadia/backend/pkg/supabase"
)

// TokenVerifier resolves a bearer token to a user. The Supabase client is the
// production implementation; DevVerifier serves local sqlite deployments.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*supabase.User, error)
}

// DevVerifier accepts any non-empty bearer token and uses it as the user ID.
// Development only; never wire it in front of a shared store.
type DevVerifier struct{}

func (DevVerifier) VerifyToken(_ context.Context, token string) (*supabase.User, error) {
	return &supabase.User{ID: token}, nil
}

// Auth middleware to verify bearer tokens and put the user in context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Debug("authentication failed: missing authorization header")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			log.Debug("authentication failed: invalid authorization format")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			c.Abort()
			return
		}

		user, err := verifier.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			log.Warn("authentication failed: token verification error", logger.Err(err))
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)

		ctx := logger.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
