package router

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/ksuid"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"itemhub/internal/config"
	"itemhub/internal/errors"
	"itemhub/internal/handler"
	"itemhub/internal/metrics"
	"itemhub/internal/model"
)

// Register wires middleware and routes.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	itemHandler *handler.ItemHandler,
	userHandler *handler.UserHandler,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
) {
	e.HideBanner = true
	e.HTTPErrorHandler = handler.NewErrorHandler(log, cfg.Debug)
	e.Validator = NewValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ksuid.New().String() },
	}))
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))
	e.Use(prometheusMiddleware)

	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireAuth := []echo.MiddlewareFunc{
		echojwt.WithConfig(echojwt.Config{
			ParseTokenFunc: authHandler.ParseToken,
			ErrorHandler: func(c echo.Context, err error) error {
				return errors.ErrUnauthorized
			},
		}),
		authHandler.RequirePrincipal,
	}

	api := e.Group(cfg.APIPrefix)

	api.GET("/items", itemHandler.ListItems)
	api.GET("/items/:id", itemHandler.GetItem)
	api.POST("/items", itemHandler.CreateItem)
	api.PUT("/items/:id", itemHandler.UpdateItem)
	api.DELETE("/items/:id", itemHandler.DeleteItem)

	api.POST("/users/login", authHandler.Login)
	api.POST("/users", userHandler.CreateUser, authHandler.OptionalPrincipal)
	api.GET("/users", userHandler.ListUsers, requireAuth...)
	api.GET("/users/me", userHandler.Me, requireAuth...)
	api.GET("/users/:id", userHandler.GetUser, requireAuth...)
	api.PUT("/users/:id", userHandler.UpdateUser, requireAuth...)
	api.DELETE("/users/:id", userHandler.DeleteUser, requireAuth...)
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				log.Error("request", fields...)
			case v.Status >= http.StatusBadRequest:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		},
	})
}

// prometheusMiddleware records duration and count for each request except
// scrapes of /metrics itself.
func prometheusMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if c.Request().URL.Path == "/metrics" {
			return err
		}
		status := c.Response().Status
		if err != nil {
			// The error handler has not written yet; predict its status.
			status = statusOf(err)
		}
		path := c.Path()
		if path == "" || err == echo.ErrNotFound {
			path = metrics.UnmatchedPath
		}
		metrics.RecordRequest(c.Request().Method, path, status, time.Since(start).Seconds())
		return err
	}
}

func statusOf(err error) int {
	if mapped := errors.MapErrorToHTTP(err); mapped != nil {
		return mapped.StatusCode
	}
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}

// CustomValidator wraps validator for Echo and reports failures by JSON field name.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds a CustomValidator whose field names follow json tags.
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(nullableValue, model.Nullable[string]{})
	return &CustomValidator{validator: v}
}

// nullableValue lets field tags such as max=100 see the wrapped string.
// A null or absent value validates as empty.
func nullableValue(field reflect.Value) interface{} {
	if n, ok := field.Interface().(model.Nullable[string]); ok && n.Value != nil {
		return *n.Value
	}
	return nil
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return &errors.ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
