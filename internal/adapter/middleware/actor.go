package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"scholarship-backend/internal/domain/application"
)

const (
	HeaderUserID   = "Ax-User-Id"
	HeaderUserRole = "Ax-User-Role"

	actorKey = "actor"
)

// ActorMiddleware trusts the identity headers set by the gateway in front of
// the service and stores the caller on the echo context.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a, err := parseActor(c.Request().Header)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
			}
			c.Set(actorKey, a)
			return next(c)
		}
	}
}

// ActorFrom returns the caller stored by ActorMiddleware.
func ActorFrom(c echo.Context) (application.Actor, bool) {
	a, ok := c.Get(actorKey).(application.Actor)
	return a, ok
}

// WithActor stores a on c; handler tests use it instead of headers.
func WithActor(c echo.Context, a application.Actor) { c.Set(actorKey, a) }

func parseActor(h http.Header) (application.Actor, error) {
	raw := strings.TrimSpace(h.Get(HeaderUserID))
	if raw == "" {
		return application.Actor{}, errMissing(HeaderUserID)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return application.Actor{}, errInvalid(HeaderUserID)
	}
	role := application.Role(strings.ToLower(strings.TrimSpace(h.Get(HeaderUserRole))))
	switch role {
	case application.RoleStudent, application.RoleAdmin:
	case "":
		return application.Actor{}, errMissing(HeaderUserRole)
	default:
		return application.Actor{}, errInvalid(HeaderUserRole)
	}
	return application.Actor{UserID: id, Role: role}, nil
}

type headerError string

func (e headerError) Error() string { return string(e) }

func errMissing(h string) error { return headerError("missing " + h) }
func errInvalid(h string) error { return headerError("invalid " + h) }
