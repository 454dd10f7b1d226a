package patient

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/fhir-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients", h.ListPatients)
	g.GET("/patients/", h.ListPatients)
	g.GET("/patients/:id", h.GetPatient)
	g.GET("/patients/:id/encounters", h.GetPatientEncounters)
	g.GET("/patients/:id/medications", h.GetPatientMedications)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	projection, ok := ParseProjection(c.QueryParam("view"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "view must be \"summary\" or \"full\"")
	}
	views := h.svc.ListPatients(ListQuery{
		Limit:      pg.Limit,
		Name:       c.QueryParam("name"),
		Projection: projection,
	})
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.GetPatient(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetPatientEncounters(c echo.Context) error {
	encs, err := h.svc.GetPatientEncounters(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, encs)
}

func (h *Handler) GetPatientMedications(c echo.Context) error {
	meds, err := h.svc.GetPatientMedications(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, meds)
}

func httpError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
