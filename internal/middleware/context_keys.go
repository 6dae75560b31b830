package middleware

import "github.com/gin-gonic/gin"

// actorKey is the key used to store the acting operator's identifier in
// the Gin context.
const actorKey = contextKey("actor")

// actorHeader carries the operator identifier set by the API gateway.
// The ledger treats it as opaque audit data.
const actorHeader = "X-Actor-ID"

// defaultActor is recorded when no operator identifier is supplied, e.g.
// for automated producers calling the recording surface.
const defaultActor = "system"

// ActorMiddleware extracts the operator identifier from the request
// header and stores it in the Gin context for audit fields.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(actorHeader)
		if actor == "" {
			actor = defaultActor
		}
		c.Set(string(actorKey), actor)
		c.Next()
	}
}

// GetActorFromContext retrieves the acting operator's identifier from the
// Gin context, falling back to the default actor.
func GetActorFromContext(c *gin.Context) string {
	actorVal, exists := c.Get(string(actorKey))
	if !exists {
		return defaultActor
	}
	actor, ok := actorVal.(string)
	if !ok || actor == "" {
		return defaultActor
	}
	return actor
}
