package handler

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itemhub/internal/errors"
	"itemhub/internal/model"
)

// Response is the envelope every endpoint answers with. Code is 0 on success
// and the HTTP status on failure.
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// MessageResponse is the payload of delete endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// PrincipalKey is the echo context key holding the authenticated *model.User.
const PrincipalKey = "principal"

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Code: 0, Msg: "ok", Data: data})
}

// principal returns the authenticated user, or nil on anonymous requests.
func principal(c echo.Context) *model.User {
	u, _ := c.Get(PrincipalKey).(*model.User)
	return u
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("id", "must be a positive integer")
	}
	return uint(id), nil
}

// parsePage reads skip (alias offset) and limit from the query string.
func parsePage(c echo.Context) (skip, limit int, err error) {
	var offset int
	err = echo.QueryParamsBinder(c).
		Int("skip", &skip).
		Int("offset", &offset).
		Int("limit", &limit).
		BindError()
	if err != nil {
		return 0, 0, errors.NewValidationError("query", "skip, offset and limit must be integers")
	}
	if c.QueryParam("skip") == "" {
		skip = offset
	}
	return skip, limit, nil
}

// bind decodes and validates the request body into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errors.Wrap(errors.ErrValidation, "invalid request body")
	}
	return c.Validate(dst)
}

// NewErrorHandler renders every error as a failure envelope. Errors outside
// the domain taxonomy become 500s and are logged; their text is only sent
// when debug is on.
func NewErrorHandler(log *zap.Logger, debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var body errors.ErrorResponse
		var he *echo.HTTPError
		if mapped := errors.MapErrorToHTTP(err); mapped != nil {
			body = mapped.ToErrorResponse()
		} else if stderrors.As(err, &he) {
			msg := http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok {
				msg = m
			}
			body = errors.ErrorResponse{Code: he.Code, Msg: msg}
		} else {
			log.Error("unhandled error",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			body = errors.ErrorResponse{Code: http.StatusInternalServerError, Msg: "internal server error"}
			if debug {
				body.Data = err.Error()
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(body.Code)
		} else {
			err = c.JSON(body.Code, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}
