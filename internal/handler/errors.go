package handler

import (
	"errors"

	"verokai-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

var errInvalidBody = errors.New("Cuerpo JSON inválido")

// statusBySentinel maps domain errors to HTTP status codes. The sentinel's own
// text is the response message.
var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrInsufficientStock, fiber.StatusBadRequest},
	{service.ErrSelfDelete, fiber.StatusBadRequest},
	{service.ErrWrongPassword, fiber.StatusBadRequest},
	{service.ErrProductNotFound, fiber.StatusNotFound},
	{service.ErrSaleNotFound, fiber.StatusNotFound},
	{service.ErrPurchaseNotFound, fiber.StatusNotFound},
	{service.ErrUserNotFound, fiber.StatusNotFound},
	{service.ErrRoleNotFound, fiber.StatusNotFound},
	{service.ErrDuplicateBarcode, fiber.StatusConflict},
	{service.ErrProductInUse, fiber.StatusConflict},
	{service.ErrEmailExists, fiber.StatusConflict},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{service.ErrUserInactive, fiber.StatusUnauthorized},
}

// respondError writes known domain errors as {error} JSON and hands anything
// else to the app's ErrorHandler.
func respondError(c *fiber.Ctx, err error) error {
	body := fiber.Map{}
	var itemErr *service.ItemError
	if errors.As(err, &itemErr) {
		body["item"] = itemErr.Index
	}

	var validation *service.ValidationError
	if errors.As(err, &validation) {
		body["error"] = validation.Message
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		body["disponible"] = stockErr.Available
		body["solicitado"] = stockErr.Requested
	}

	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			body["error"] = m.err.Error()
			return c.Status(m.status).JSON(body)
		}
	}
	return err
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
