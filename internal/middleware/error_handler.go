package middleware

import (
	defError "errors"

	apiError "doc-collab-server/internal/errors"
	"doc-collab-server/internal/logger"
	"doc-collab-server/internal/response"

	"github.com/gin-gonic/gin"
)

// ErrorHandler resolves errors attached by handlers against the
// response table. Anticipated business errors map to their named
// entry; anything else becomes common.internal.
func ErrorHandler(resp *response.Table) gin.HandlerFunc {
	log := logger.With("http")
	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		// detect any errors
		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var bizErr *apiError.BizError
		if !defError.As(err, &bizErr) {
			// a raw error we didn't wrap is a system failure
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
			bizErr = apiError.Wrap(apiError.NameInternal, err)
		} else {
			log.Info().Str("name", bizErr.Name).Str("path", c.Request.URL.Path).Msg("request rejected")
		}

		resp.Write(c, bizErr.Name, bizErr.Details)
		c.Abort()
	}
}
