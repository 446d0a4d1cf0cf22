// Package handler exposes the booking flow over HTTP.  Browse endpoints
// are stateless reads against the authority; hold and OTP endpoints drive
// the caller's session.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/schedule"
	"github.com/iliyamo/cowork-booking/internal/service"
)

type Catalog interface {
	ListWorkspaces(ctx context.Context, force bool) ([]model.Workspace, error)
}

type Locations interface {
	FetchAvailableLocations(ctx context.Context, displayType string) ([]model.Location, error)
}

type Availability interface {
	AvailableSlots(ctx context.Context, workspaceID, date string, hours schedule.Hours) ([]schedule.Slot, error)
}

// BrowseHandler serves the catalog, location and slot lookups used to fill
// the booking form.
type BrowseHandler struct {
	Catalog      Catalog
	Locations    Locations
	Availability Availability
	Log          *logrus.Entry
}

// locationView adds the picker label to a location row.
type locationView struct {
	model.Location
	Label string `json:"label"`
}

// ListWorkspaces handles GET /v1/workspaces.  ?force=true skips the cache.
func (h *BrowseHandler) ListWorkspaces(c echo.Context) error {
	force, _ := strconv.ParseBool(c.QueryParam("force"))
	items, err := h.Catalog.ListWorkspaces(c.Request().Context(), force)
	if err != nil {
		h.Log.WithError(err).Error("list workspaces failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load workspaces"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListLocations handles GET /v1/locations?workspace_type=<display name>.
func (h *BrowseHandler) ListLocations(c echo.Context) error {
	rows, err := h.Locations.FetchAvailableLocations(c.Request().Context(), c.QueryParam("workspace_type"))
	if errors.Is(err, service.ErrUnknownWorkspaceType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workspace type"})
	}
	if err != nil {
		h.Log.WithError(err).Error("list locations failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load locations"})
	}
	out := make([]locationView, 0, len(rows))
	for _, l := range rows {
		out = append(out, locationView{Location: l, Label: l.Label()})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListSlots handles GET /v1/workspaces/:id/slots?date=YYYY-MM-DD.  The
// working day defaults to 08:00-18:00 and may be narrowed with ?open and
// ?close.
func (h *BrowseHandler) ListSlots(c echo.Context) error {
	id := c.Param("id")
	date := c.QueryParam("date")
	if id == "" || date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "workspace id and date are required"})
	}
	hours := schedule.DefaultHours()
	if v := c.QueryParam("open"); v != "" {
		hours.Open = v
	}
	if v := c.QueryParam("close"); v != "" {
		hours.Close = v
	}
	if !schedule.ValidRange(hours.Open, hours.Close) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid working hours"})
	}

	slots, err := h.Availability.AvailableSlots(c.Request().Context(), id, date, hours)
	if err != nil {
		h.Log.WithError(err).WithField("workspace_id", id).Error("list slots failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots, "date": date})
}
