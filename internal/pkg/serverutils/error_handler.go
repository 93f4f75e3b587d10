package serverutils

import (
	"errors"

	"github.com/on-par/vemorable-sub000/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates the error taxonomy into transport
// status codes and the {success:false, error:{...}} envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var (
			validationErr *apperr.ValidationError
			notFoundErr   *apperr.NotFoundError
			providerErr   *apperr.ProviderError
			databaseErr   *apperr.DatabaseError
			parseErr      *apperr.ParseError
			fiberErr      *fiber.Error
		)

		switch {
		case errors.As(err, &validationErr):
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(validationErr.Message, "VALIDATION_ERROR", nil))
		case errors.As(err, &notFoundErr):
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(notFoundErr.Error(), "NOT_FOUND", nil))
		case errors.As(err, &providerErr):
			return ctx.Status(fiber.StatusBadGateway).
				JSON(ErrorResponse("embedding provider unavailable", "PROVIDER_ERROR", nil))
		case errors.As(err, &databaseErr):
			return ctx.Status(fiber.StatusInternalServerError).
				JSON(ErrorResponse("storage operation failed", "DATABASE_ERROR", fiber.Map{"operation": databaseErr.Op}))
		case errors.As(err, &parseErr):
			return ctx.Status(fiber.StatusInternalServerError).
				JSON(ErrorResponse("stored value is malformed", "PARSE_ERROR", nil))
		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse(fiberErr.Message, "HTTP_ERROR", nil))
		default:
			return ctx.Status(fiber.StatusInternalServerError).
				JSON(ErrorResponse("internal server error", "INTERNAL_ERROR", nil))
		}
	}
}
