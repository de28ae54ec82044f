package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"extranet/internal/service"
)

// ListUsers pages through the user directory.
//
// @Summary   List users
// @Tags      users
// @Security  BearerAuth
// @Produce   json
// @Param     limit   query  int  false  "page size"  default(50)
// @Param     offset  query  int  false  "offset"     default(0)
// @Success   200  {object}  service.UserListResult
// @Router    /users [get]
func ListUsers(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "50"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		res, err := users.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
