package middleware

import "github.com/gin-gonic/gin"

// actorIDKey is the key used to store the authenticated actor's ID.
const actorIDKey = contextKey("actorID")

// firmIDKey is the key used to store the authenticated actor's firm scope.
const firmIDKey = contextKey("firmID")

// GetActorIDFromContext retrieves the authenticated actor ID from the Gin
// context. It returns the actor ID and a boolean indicating if it was found.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	if v := c.Request.Context().Value(actorIDKey); v != nil {
		id, ok := v.(string)
		return id, ok
	}
	return "", false
}

// GetFirmIDFromContext retrieves the firm scope from the Gin context.
// Every data operation is bound to this scope.
func GetFirmIDFromContext(c *gin.Context) (string, bool) {
	if v := c.Request.Context().Value(firmIDKey); v != nil {
		id, ok := v.(string)
		return id, ok
	}
	return "", false
}
