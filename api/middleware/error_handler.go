// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10" // Import validator for binding errors

	"github.com/mockden/mockden-backend/internal/auth"
	"github.com/mockden/mockden-backend/internal/core"
	"github.com/mockden/mockden-backend/internal/schema"
	"github.com/mockden/mockden-backend/internal/storage"
)

// ErrorHandler creates a Gin middleware for centralized error handling.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request using subsequent handlers
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// Only the last error drives the response.
		err := c.Errors.Last().Err
		log.Printf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		// Schema/record validation failures carry a field -> reason mapping
		// that the authoring caller needs verbatim.
		var fieldErrs schema.FieldErrors
		if errors.As(err, &fieldErrs) {
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error":  "Validation failed.",
					"fields": fieldErrs,
				})
			}
			return
		}

		var statusCode int
		var userMessage string

		switch {
		case errors.Is(err, storage.ErrUserNotFound),
			errors.Is(err, storage.ErrProjectNotFound),
			errors.Is(err, storage.ErrSchemaNotFound),
			errors.Is(err, storage.ErrEntryNotFound),
			errors.Is(err, storage.ErrTemplateNotFound),
			errors.Is(err, storage.ErrEndpointNotFound):
			statusCode = http.StatusNotFound
			userMessage = err.Error()

		case errors.Is(err, storage.ErrEmailExists),
			errors.Is(err, storage.ErrProjectExists),
			errors.Is(err, storage.ErrRouteExists),
			errors.Is(err, storage.ErrSchemaInUse),
			errors.Is(err, storage.ErrTemplateInUse):
			statusCode = http.StatusConflict
			userMessage = err.Error()

		case errors.Is(err, storage.ErrInvalidCredentials):
			statusCode = http.StatusUnauthorized
			userMessage = "Invalid email or password."

		case errors.Is(err, auth.ErrTokenMalformed),
			errors.Is(err, auth.ErrTokenInvalid),
			errors.Is(err, auth.ErrTokenClaimsInvalid),
			errors.Is(err, auth.ErrUnexpectedSigningMethod):
			statusCode = http.StatusUnauthorized
			userMessage = "Invalid or malformed authentication token."

		case errors.Is(err, auth.ErrTokenExpired):
			statusCode = http.StatusUnauthorized
			userMessage = "Authentication token has expired."

		case errors.Is(err, core.ErrInvalidRoute):
			statusCode = http.StatusBadRequest
			userMessage = err.Error()

		default:
			if validationErrs, ok := err.(validator.ValidationErrors); ok {
				// Handle validation errors from c.ShouldBindJSON
				statusCode = http.StatusBadRequest
				userMessage = "Validation failed. Please check your input."
				for _, fe := range validationErrs {
					log.Printf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
				}
				break
			}
			statusCode = http.StatusInternalServerError
			userMessage = "An unexpected internal server error occurred."
			log.Printf("Unhandled error type: %T, Error: %v", err, err)
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, gin.H{"error": userMessage})
		} else {
			log.Printf("[ErrorHandler] Warning: Response already written before handling error.")
		}
	}
}
