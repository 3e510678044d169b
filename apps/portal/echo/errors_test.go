package echoportal

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ripoti/core"
)

func TestErrorHandler_shutdownError(t *testing.T) {
	server, _ := setup(t)
	server.app.GET("/entropy", func(c echo.Context) error {
		return core.NewShutdownError("generating session nonce: entropy source failed")
	})

	req, rec := newRequest(http.MethodGet, "/entropy")
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d; want 500", rec.Code)
	}
	select {
	case <-server.ShutdownSignal():
	case <-time.After(time.Second):
		t.Fatal("shutdown was not signaled")
	}
}
