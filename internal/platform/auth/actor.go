package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/occfit/occfit/internal/domain/station"
	"github.com/occfit/occfit/internal/platform/errs"
)

// ActingRoleHeader selects which of the user's granted roles the request acts
// as. Users holding several station roles (a physician covering the clinical
// station, say) pick one per request; without the header the first granted
// role applies.
const ActingRoleHeader = "X-Acting-Role"

// ActorFromEcho resolves the station actor for the current request from the
// authenticated user and the optional acting-role header. The acting role
// must be one of the roles the token grants.
func ActorFromEcho(c echo.Context) (station.Actor, error) {
	ctx := c.Request().Context()
	userID := UserIDFromContext(ctx)
	granted := RolesFromContext(ctx)
	if userID == "" || len(granted) == 0 {
		return station.Actor{}, errs.Permissionf("request carries no authenticated user")
	}

	acting := c.Request().Header.Get(ActingRoleHeader)
	if acting == "" {
		acting = granted[0]
	}
	held := false
	for _, r := range granted {
		if r == acting {
			held = true
			break
		}
	}
	if !held {
		return station.Actor{}, errs.Permissionf("user does not hold role %q", acting)
	}

	role, err := station.Parse(acting)
	if err != nil {
		return station.Actor{}, err
	}
	return station.Actor{UserID: userID, Role: role}, nil
}
