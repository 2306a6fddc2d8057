package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserIDKey is the gin context key carrying the acting user.
const UserIDKey = "user_id"

// Identity stamps every request with the configured board owner. There is
// no authentication: the core trusts its local rendering layer, and every
// mutation is attributed to this single identity.
func Identity(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// CurrentUser reads the acting user from the gin context.
func CurrentUser(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
