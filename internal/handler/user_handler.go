package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"itemhub/internal/model"
	"itemhub/internal/service"
)

// UserHandler serves the users resource.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a user handler.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUser godoc
// @Summary Register user
// @Description Anonymous callers may not set is_superuser or deactivate the account.
// @Tags users
// @Accept json
// @Produce json
// @Param user body model.UserCreate true "User payload"
// @Success 201 {object} Response{data=model.User}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var in model.UserCreate
	if err := bind(c, &in); err != nil {
		return err
	}
	user, err := h.svc.CreateUser(c.Request().Context(), principal(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, user)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Records to skip" default(0)
// @Param limit query int false "Page size (max 100)" default(10)
// @Success 200 {object} Response{data=[]model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	skip, limit, err := parsePage(c)
	if err != nil {
		return err
	}
	users, err := h.svc.ListUsers(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, users)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} Response{data=model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	return respond(c, http.StatusOK, principal(c))
}

// UpdateUser godoc
// @Summary Partially update user
// @Description Allowed for the user themself or a superuser. Only superusers may change is_active or is_superuser.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body model.UserUpdate true "Fields to change"
// @Success 200 {object} Response{data=model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in model.UserUpdate
	if err := bind(c, &in); err != nil {
		return err
	}
	user, err := h.svc.UpdateUser(c.Request().Context(), principal(c), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.DeleteUser(c.Request().Context(), principal(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}
