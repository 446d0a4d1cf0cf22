package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cowork-booking/internal/guest"
)

// OtpHandler drives the guest verifier of the caller's session.
type OtpHandler struct{}

// Request handles POST /v1/otp.  A request made while one is in flight or
// during the cooldown is refused with 429 and Retry-After.  Otherwise the
// verifier state after the attempt is returned; failures are reported in
// its error field.
func (h *OtpHandler) Request(c echo.Context) error {
	s, err := current(c)
	if s == nil {
		return err
	}
	var in guest.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !s.OTP.RequestOtp(context.WithoutCancel(c.Request().Context()), in) {
		st := s.OTP.Snapshot()
		if st.Cooldown > 0 {
			c.Response().Header().Set("Retry-After", strconv.Itoa(st.Cooldown))
		}
		return c.JSON(http.StatusTooManyRequests, st)
	}
	return c.JSON(http.StatusOK, s.OTP.Snapshot())
}

// State handles GET /v1/otp.
func (h *OtpHandler) State(c echo.Context) error {
	s, err := current(c)
	if s == nil {
		return err
	}
	return c.JSON(http.StatusOK, s.OTP.Snapshot())
}
