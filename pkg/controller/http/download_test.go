package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	controller "github.com/hy-sato/picket/pkg/controller/http"
	"github.com/hy-sato/picket/pkg/infra/ticket"
)

func TestDownloadEndpoint(t *testing.T) {
	now := time.Now()
	store := ticket.New(15*time.Minute,
		ticket.WithDir(t.TempDir()),
		ticket.WithNow(func() time.Time { return now }),
	)

	server, err := controller.NewServer(
		context.Background(),
		&fakeBundleUC{},
		store,
		controller.WithAddr("localhost:0"),
	)
	gt.NoError(t, err)

	blob := []byte("zip-bytes-here")
	tkt, err := store.Issue(blob, "2026_08_30_12_00_00")
	gt.NoError(t, err)

	t.Run("valid ticket streams the archive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/download/"+string(tkt), nil)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, w.Header().Get("Content-Type")).Equal("application/zip")
		gt.True(t, strings.Contains(
			w.Header().Get("Content-Disposition"),
			"picket_livephoto_2026_08_30_12_00_00.zip",
		))
		gt.Value(t, w.Body.String()).Equal(string(blob))
	})

	t.Run("ticket stays redeemable for repeated downloads", func(t *testing.T) {
		for range 2 {
			req := httptest.NewRequest(http.MethodGet, "/download/"+string(tkt), nil)
			w := httptest.NewRecorder()
			server.Handler.ServeHTTP(w, req)
			gt.Value(t, w.Code).Equal(http.StatusOK)
		}
	})

	t.Run("unknown ticket yields not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/download/no-such-ticket", nil)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusNotFound)
		gt.True(t, strings.Contains(w.Body.String(), "validate again"))
	})

	t.Run("expired ticket yields not found", func(t *testing.T) {
		now = now.Add(16 * time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/download/"+string(tkt), nil)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})
}
