package cookie

import (
	"github.com/gin-gonic/gin"
)

// Session issuance lives in a separate service; this core only reads the
// token it sets.
const AccessTokenCookieName = "access_token"

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}
