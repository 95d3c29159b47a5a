package echoapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

const orderingParam = "ordering"

// strictBinder decodes JSON bodies rejecting unknown fields; query params go through echo's binder.
type strictBinder struct {
	echo.DefaultBinder
}

func newStrictBinder() *strictBinder {
	return new(strictBinder)
}

func (b *strictBinder) Bind(i interface{}, ctx echo.Context) error {
	req := ctx.Request()
	if req.ContentLength == 0 {
		return b.DefaultBinder.Bind(i, ctx)
	}
	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return echo.ErrUnsupportedMediaType
	}

	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(i); err != nil {
		return core.NewValidationError(errors.Wrap(err, "malformed JSON body"))
	}
	return nil
}

// orderings reads the `?ordering=name,-created_at` param, keeping the allowed fields only.
func orderings(ctx echo.Context, allowed ...string) []core.DBOrdering {
	return core.ParseOrderings(ctx.QueryParam(orderingParam), allowed...)
}

// bindQuery binds the query string of a GET request into i.
func bindQuery(ctx echo.Context, i interface{}) error {
	if err := ctx.Bind(i); err != nil {
		var herr *echo.HTTPError
		if errors.As(err, &herr) && herr.Code == http.StatusBadRequest {
			return core.NewValidationError(errors.Errorf("%v", herr.Message))
		}
		return err
	}
	return nil
}
