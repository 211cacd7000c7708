package handler

import (
	"verokai-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func userIDParam(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// CreateUser handles user creation
// POST /api/usuarios
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errInvalidBody.Error())
	}

	user, err := h.userService.CreateUser(c.UserContext(), &req, actorFrom(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Usuario creado",
		"data":    user.ToResponse(),
	})
}

// UpdateUserPrivileges handles privilege assignment
// PUT /api/usuarios/:id/privilegios
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	userID, ok := userIDParam(c)
	if !ok {
		return badRequest(c, "ID de usuario inválido")
	}

	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errInvalidBody.Error())
	}

	user, err := h.userService.UpdateUserPrivileges(c.UserContext(), userID, req.Privileges, actorFrom(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Privilegios actualizados",
		"data":    user.ToResponse(),
	})
}

// GET /api/usuarios
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GET /api/usuarios/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, ok := userIDParam(c)
	if !ok {
		return badRequest(c, "ID de usuario inválido")
	}

	user, err := h.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// PUT /api/usuarios/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, ok := userIDParam(c)
	if !ok {
		return badRequest(c, "ID de usuario inválido")
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, errInvalidBody.Error())
	}

	user, err := h.userService.UpdateUser(c.UserContext(), userID, &req, actorFrom(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Usuario actualizado",
		"data":    user.ToResponse(),
	})
}

// DELETE /api/usuarios/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, ok := userIDParam(c)
	if !ok {
		return badRequest(c, "ID de usuario inválido")
	}

	if err := h.userService.DeleteUser(c.UserContext(), userID, actorFrom(c).ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Usuario eliminado"})
}
