package routes

import (
	"time"

	"github.com/kataras/iris/v12"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/services"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/utils"
)

var engine *services.ReservationService

// InitEngine wires the reservation service into the route handlers.
// Called once from main before the router starts serving.
func InitEngine(svc *services.ReservationService) {
	engine = svc
}

// handleEngineError translates service errors into HTTP problem
// responses. Unknown errors become a 500 without leaking details.
func handleEngineError(ctx iris.Context, err error) {
	if engineErr, ok := services.AsEngineError(err); ok {
		utils.CreateError(engineErr.HTTPStatus(), string(engineErr.Kind), engineErr.Message, ctx)
		return
	}
	utils.CreateInternalServerError(ctx)
}

// parseDateParam reads a YYYY-MM-DD query parameter.
func parseDateParam(ctx iris.Context, name string) (time.Time, bool) {
	raw := ctx.URLParam(name)
	if raw == "" {
		utils.CreateError(iris.StatusBadRequest, "invalid_dates", name+" query parameter is required", ctx)
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "invalid_dates", name+" must be formatted YYYY-MM-DD", ctx)
		return time.Time{}, false
	}
	return t, true
}
