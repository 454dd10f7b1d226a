package push

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/fhir-api/internal/store"
)

// Pusher forwards one resource to the remote FHIR server.
type Pusher interface {
	Push(ctx context.Context, resource store.Record) (map[string]any, error)
}

type Handler struct {
	gw Pusher
}

func NewHandler(gw Pusher) *Handler {
	return &Handler{gw: gw}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/fhir/push", h.Push)
}

type pushRequest struct {
	Resource store.Record `json:"resource" validate:"required"`
}

type pushResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Result  map[string]any `json:"result"`
}

func (h *Handler) Push(c echo.Context) error {
	var req pushRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.gw.Push(c.Request().Context(), req.Resource)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return echo.NewHTTPError(http.StatusBadRequest, vErr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to push to FHIR server: "+err.Error())
	}

	return c.JSON(http.StatusOK, pushResponse{
		Status:  "success",
		Message: "Resource pushed to FHIR server",
		Result:  result,
	})
}
