package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"itemhub/internal/metrics"
	"itemhub/internal/model"
	"itemhub/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary Exchange username and password for a bearer token
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body model.LoginRequest true "Login credentials"
// @Success 200 {object} Response{data=model.Token}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	metrics.RecordLogin(err == nil)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, token)
}

// ParseToken is the echo-jwt ParseTokenFunc: it verifies the bearer token and
// yields its subject.
func (h *AuthHandler) ParseToken(_ echo.Context, auth string) (interface{}, error) {
	return h.authService.VerifyToken(auth)
}

// RequirePrincipal loads the user named by the verified token subject that
// echo-jwt stored under "user".
func (h *AuthHandler) RequirePrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		username, _ := c.Get("user").(string)
		user, err := h.authService.LoadPrincipal(c.Request().Context(), username)
		if err != nil {
			return err
		}
		c.Set(PrincipalKey, user)
		return next(c)
	}
}

// OptionalPrincipal attaches the principal when a valid bearer token is
// present and leaves the request anonymous otherwise.
func (h *AuthHandler) OptionalPrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			if user, err := h.authService.Principal(c.Request().Context(), strings.TrimSpace(token)); err == nil {
				c.Set(PrincipalKey, user)
			}
		}
		return next(c)
	}
}
