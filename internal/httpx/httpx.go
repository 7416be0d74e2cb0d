// Package httpx maps application errors to HTTP responses.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medisure/claims-portal/internal/apperr"
)

// StatusForKind maps an error kind to its HTTP status code.
func StatusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindState:
		return http.StatusConflict
	case apperr.KindDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler converts errors escaping the handlers into structured JSON
// responses. Messages of server-side failures are not leaked to clients.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		kind := apperr.KindOf(err)
		status := StatusForKind(kind)
		message := err.Error()
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "kind", kind.String(), "error", err)
			message = http.StatusText(status)
		}
		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}
