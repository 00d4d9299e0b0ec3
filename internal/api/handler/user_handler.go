package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agromarket/marketplace-api/internal/api/metrics"
	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

const defaultUserPageLimit = 100

// UserHandler handles HTTP requests for accounts.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type registerUserRequest struct {
	Name     string  `json:"nome" validate:"required,min=3,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"senha" validate:"required,min=8,password"`
	Role     string  `json:"tipo" validate:"required,oneof=produtor comprador admin"`
	Location *string `json:"localizacao" validate:"omitempty,max=100"`
}

// Register handles POST /usuarios/.
//
// @Summary      Register a new account
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Param        body  body      registerUserRequest  true  "Account details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /usuarios/ [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.Register(c.Request().Context(), ports.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Location: req.Location,
	})
	if err != nil {
		return err
	}

	metrics.UsersRegisteredTotal.WithLabelValues(string(user.Role)).Inc()
	return c.JSON(http.StatusCreated, user)
}

// Me handles GET /usuarios/me.
//
// @Summary      Current account
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /usuarios/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// List handles GET /usuarios/.
//
// @Summary      List accounts
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query     int  false  "Rows to skip"  default(0)
// @Param        limit  query     int  false  "Page size"     default(100)
// @Success      200    {array}   domain.User
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /usuarios/ [get]
func (h *UserHandler) List(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := parsePage(c, defaultUserPageLimit)
	if err != nil {
		return err
	}

	users, err := h.service.List(c.Request().Context(), actor, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Delete handles DELETE /usuarios/:id.
//
// @Summary      Delete an account and its listings
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  domain.User
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /usuarios/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	deleted, err := h.service.Delete(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleted)
}
