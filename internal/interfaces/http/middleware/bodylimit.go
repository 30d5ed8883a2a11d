package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniformco/backoffice/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at maxBytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitBody(c, maxBytes)
	}
}

// JSONBodyLimit caps every body except multipart uploads, which carry their
// own larger limit on the upload routes.
func JSONBodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() == gin.MIMEMultipartPOSTForm {
			c.Next()
			return
		}
		limitBody(c, maxBytes)
	}
}

func limitBody(c *gin.Context, maxBytes int64) {
	if c.Request.ContentLength > maxBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRequestTooLarge,
			"Request body exceeds maximum allowed size",
			GetRequestID(c),
		))
		return
	}
	// streaming bodies without Content-Length fail on read
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	c.Next()
}
