package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/hold"
	"github.com/iliyamo/cowork-booking/internal/middleware"
	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/session"
)

// HoldHandler drives the hold orchestrator of the caller's session.
// Every route needs middleware.Session.
type HoldHandler struct {
	Log *logrus.Entry
}

func current(c echo.Context) (*session.Session, error) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "no session"})
	}
	return s, nil
}

func isValidation(err error) bool {
	return errors.Is(err, hold.ErrMissingFields) ||
		errors.Is(err, hold.ErrInvalidWorkspaceType) ||
		errors.Is(err, hold.ErrInvalidLocation)
}

// Attempt handles POST /v1/holds.
//
//	201 held, 409 conflict (with alternatives), 400 validation,
//	502 authority failure, 202 when another attempt is still in flight.
func (h *HoldHandler) Attempt(c echo.Context) error {
	s, err := current(c)
	if s == nil {
		return err
	}
	var req model.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	// The attempt outlives a dropped connection so the hold it places is
	// still tracked, and released, by the session.
	ctx := context.WithoutCancel(c.Request().Context())
	if err := s.Hold.AttemptHold(ctx, req); err != nil {
		if isValidation(err) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		h.Log.WithError(err).Error("attempt hold failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	st := s.Hold.Snapshot()
	switch st.Phase {
	case hold.PhaseHeld:
		return c.JSON(http.StatusCreated, st)
	case hold.PhaseConflict:
		return c.JSON(http.StatusConflict, st)
	case hold.PhaseFailed:
		return c.JSON(http.StatusBadGateway, st)
	case hold.PhaseReserving:
		return c.JSON(http.StatusAccepted, st)
	}
	return c.JSON(http.StatusOK, st)
}

// Current handles GET /v1/holds/current.
func (h *HoldHandler) Current(c echo.Context) error {
	s, err := current(c)
	if s == nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Hold.Snapshot())
}

type restoreRequest struct {
	WorkspaceType string `json:"workspace_type"`
}

// Restore handles POST /v1/holds/current/restore.  The body names the
// workspace type whose booking page is asking; a record saved by another
// flow is left alone.
func (h *HoldHandler) Restore(c echo.Context) error {
	s, err := current(c)
	if s == nil {
		return err
	}
	var req restoreRequest
	if err := c.Bind(&req); err != nil || req.WorkspaceType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "workspace_type is required"})
	}
	if err := s.Hold.RestoreFromPersisted(c.Request().Context(), req.WorkspaceType); err != nil {
		h.Log.WithError(err).Warn("restore failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to restore reservation"})
	}
	return c.JSON(http.StatusOK, s.Hold.Snapshot())
}

// Cancel handles DELETE /v1/holds/current.
func (h *HoldHandler) Cancel(c echo.Context) error {
	s, err := current(c)
	if s == nil {
		return err
	}
	res, ok := s.Hold.CancelHold(context.WithoutCancel(c.Request().Context()))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no active hold"})
	}
	return c.JSON(http.StatusOK, echo.Map{"result": res, "state": s.Hold.Snapshot()})
}

// Payment handles POST /v1/holds/current/payment.
func (h *HoldHandler) Payment(c echo.Context) error {
	s, err := current(c)
	if s == nil {
		return err
	}
	if !s.Hold.HandlePaymentStart() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no active hold"})
	}
	return c.JSON(http.StatusOK, s.Hold.Snapshot())
}

// Restart handles POST /v1/holds/current/restart.
func (h *HoldHandler) Restart(c echo.Context) error {
	s, err := current(c)
	if s == nil {
		return err
	}
	s.Hold.RestartHold()
	return c.JSON(http.StatusOK, s.Hold.Snapshot())
}
