package middleware

import (
	"context"
	"strings"

	"doc-collab-server/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	ctxActorID = "actor_id"
	ctxActor   = "actor"
)

// TokenResolver maps a bearer token to an author, nil when unknown.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.Author, error)
}

// Identify resolves the request's token to an acting author. Missing
// or unknown tokens leave the request anonymous instead of aborting;
// permission checks downstream fail naturally for anonymous actors.
func Identify(resolver TokenResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := ctx.Query("token")
		if token == "" {
			token = strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		}

		if token != "" {
			author, err := resolver.ResolveToken(ctx.Request.Context(), token)
			if err == nil && author != nil {
				ctx.Set(ctxActorID, author.ID)
				ctx.Set(ctxActor, author)
			}
		}

		ctx.Next()
	}
}

// ActorID returns the acting author's id, 0 for anonymous.
func ActorID(c *gin.Context) uint64 {
	if id, ok := c.Get(ctxActorID); ok {
		return id.(uint64)
	}
	return 0
}

// Actor returns the acting author, nil for anonymous.
func Actor(c *gin.Context) *domain.Author {
	if a, ok := c.Get(ctxActor); ok {
		return a.(*domain.Author)
	}
	return nil
}
