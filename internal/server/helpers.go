package server

import (
	"errors"

	"icarus/internal/models"
	"icarus/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/per_page query parameters. Bounds are applied
// by the feed service.
type Pagination struct {
	Page    int
	PerPage int
}

func parsePagination(c *fiber.Ctx) Pagination {
	return Pagination{
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 0),
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes the request body into dst and validates its tags.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	if err := validation.Struct(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
		return errResponseWritten
	}
	return nil
}

// respondError answers with the status matching err's code.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusCode(err), err)
}
