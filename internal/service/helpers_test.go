package service

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cowork-booking/internal/rpc"
)

// authority starts an echo server standing in for the booking authority.
func authority(t *testing.T, register func(e *echo.Echo)) *rpc.Client {
	t.Helper()
	e := echo.New()
	register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return rpc.New(rpc.Options{BaseURL: srv.URL, APIKey: "anon", Timeout: 2 * time.Second})
}

// unreachable returns a client pointing at a closed server.
func unreachable(t *testing.T) *rpc.Client {
	t.Helper()
	srv := httptest.NewServer(echo.New())
	url := srv.URL
	srv.Close()
	return rpc.New(rpc.Options{BaseURL: url, APIKey: "anon", Timeout: time.Second})
}
