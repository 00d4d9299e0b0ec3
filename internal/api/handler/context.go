package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/agromarket/marketplace-api/internal/api/middleware"
	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

const maxPageLimit = 100

// currentUser returns the account resolved by the Authenticate middleware.
// A missing account means the route was registered without it.
func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.UserFrom(c)
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		verr := domain.NewValidationError()
		verr.Add("id", "must be an integer")
		return 0, verr
	}
	return id, nil
}

// parsePage reads skip/limit query parameters. skip defaults to 0 and limit
// to defaultLimit; skip must be non-negative and limit within [1, 100].
func parsePage(c echo.Context, defaultLimit int) (ports.Page, error) {
	page := ports.Page{Skip: 0, Limit: defaultLimit}
	verr := domain.NewValidationError()

	errs := echo.QueryParamsBinder(c).
		FailFast(false).
		Int("skip", &page.Skip).
		Int("limit", &page.Limit).
		BindErrors()
	for _, err := range errs {
		var be *echo.BindingError
		if errors.As(err, &be) {
			verr.Add(be.Field, "must be an integer")
		}
	}

	if page.Skip < 0 {
		verr.Add("skip", "must be greater than or equal to 0")
	}
	if page.Limit < 1 {
		verr.Add("limit", "must be greater than or equal to 1")
	} else if page.Limit > maxPageLimit {
		verr.Add("limit", "must be less than or equal to 100")
	}
	return page, verr.OrNil()
}

func bindError() error {
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
}
