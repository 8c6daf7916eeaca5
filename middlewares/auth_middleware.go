package middlewares

import (
	"strings"

	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID = "userID"
	CtxEmail  = "email"
)

// AuthMiddleware accepts "Bearer <jwt>" and stores the user id and email on
// the context. Websocket clients may pass the token as ?token= instead.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tokenString = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		} else if c.GetHeader("Upgrade") != "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			abort(c, utils.NewAppError(utils.ErrAuthRequired, nil))
			return
		}

		userID, email, err := utils.ParseJWT(tokenString, secret)
		if err != nil {
			if !utils.HasCode(err, utils.ErrAuthSessionExpired) {
				err = utils.NewAppError(utils.ErrAuthRequired, err)
			}
			abort(c, err)
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxEmail, email)
		c.Next()
	}
}

// abort answers with the error body; causes are only exposed outside
// release mode.
func abort(c *gin.Context, err error) {
	ae := utils.AsAppError(err)
	c.AbortWithStatusJSON(ae.Status(), utils.ErrorResponse(err, gin.Mode() != gin.ReleaseMode))
}
