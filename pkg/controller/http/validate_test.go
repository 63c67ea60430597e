package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	controller "github.com/hy-sato/picket/pkg/controller/http"
	"github.com/hy-sato/picket/pkg/domain/model"
	"github.com/hy-sato/picket/pkg/domain/types"
	"github.com/hy-sato/picket/pkg/infra/ticket"
)

// fakeBundleUC records the batch it got and returns a canned result
type fakeBundleUC struct {
	gotItems []model.UploadItem
	result   *model.BundleResult
	err      error
}

func (f *fakeBundleUC) ValidateBatch(_ context.Context, items []model.UploadItem) (*model.BundleResult, error) {
	f.gotItems = items
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &model.BundleResult{}, nil
}

// buildMultipart makes a multipart body with n file parts named "files"
func buildMultipart(t *testing.T, n int) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for i := 1; i <= n; i++ {
		fw, err := mw.CreateFormFile("files", fmt.Sprintf("photo%d.jpg", i))
		gt.NoError(t, err)
		_, err = fw.Write([]byte(fmt.Sprintf("payload-%d", i)))
		gt.NoError(t, err)
	}
	gt.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func newTestServer(t *testing.T, uc *fakeBundleUC) *controller.Server {
	t.Helper()
	server, err := controller.NewServer(
		context.Background(),
		uc,
		ticket.New(time.Minute, ticket.WithDir(t.TempDir())),
		controller.WithAddr("localhost:0"),
		controller.WithMaxItems(10),
	)
	gt.NoError(t, err)
	return server
}

func TestValidateEndpoint(t *testing.T) {
	t.Run("partial success returns ticket and errors", func(t *testing.T) {
		uc := &fakeBundleUC{
			result: &model.BundleResult{
				Ticket: "tkt-1",
				Count:  2,
				Errors: []model.ValidationError{
					{Index: 2, Kind: model.KindDuplicateCode, Message: "[item 2] (b.jpg) duplicate"},
				},
			},
		}
		server := newTestServer(t, uc)

		body, contentType := buildMultipart(t, 3)
		req := httptest.NewRequest(http.MethodPost, "/validate", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)

		var resp model.ValidateResponse
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		gt.True(t, resp.OK)
		gt.Value(t, resp.Ticket).Equal("tkt-1")
		gt.Value(t, resp.Count).Equal(2)
		gt.Array(t, resp.Errors).Length(1)

		// Items are handed over in part order with 1-based indexes
		gt.Array(t, uc.gotItems).Length(3)
		gt.Value(t, uc.gotItems[0].Index).Equal(1)
		gt.Value(t, uc.gotItems[0].Filename).Equal("photo1.jpg")
		gt.Value(t, uc.gotItems[2].Index).Equal(3)
	})

	t.Run("full success has empty error list", func(t *testing.T) {
		uc := &fakeBundleUC{
			result: &model.BundleResult{Ticket: "tkt-2", Count: 1},
		}
		server := newTestServer(t, uc)

		body, contentType := buildMultipart(t, 1)
		req := httptest.NewRequest(http.MethodPost, "/validate", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)

		var resp model.ValidateResponse
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		gt.True(t, resp.OK)
		gt.Array(t, resp.Errors).Length(0)
	})

	t.Run("no accepted item means ok=false without ticket", func(t *testing.T) {
		uc := &fakeBundleUC{
			result: &model.BundleResult{
				Errors: []model.ValidationError{
					{Index: 1, Kind: model.KindCodeNotFound, Message: "[item 1] (a.jpg) no code"},
				},
			},
		}
		server := newTestServer(t, uc)

		body, contentType := buildMultipart(t, 1)
		req := httptest.NewRequest(http.MethodPost, "/validate", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)

		var resp model.ValidateResponse
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		gt.False(t, resp.OK)
		gt.Value(t, resp.Ticket).Equal("")
		gt.Array(t, resp.Errors).Length(1)
	})

	t.Run("too many parts rejected before processing", func(t *testing.T) {
		uc := &fakeBundleUC{}
		server := newTestServer(t, uc)

		body, contentType := buildMultipart(t, 11)
		req := httptest.NewRequest(http.MethodPost, "/validate", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusBadRequest)

		var resp model.ValidateResponse
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		gt.False(t, resp.OK)
		gt.Value(t, resp.Ticket).Equal("")
		gt.Nil(t, uc.gotItems)
	})

	t.Run("batch too large error from use case maps to 400", func(t *testing.T) {
		uc := &fakeBundleUC{
			err: goerr.New("at most 10 photos per request", goerr.T(types.TagBatchTooLarge)),
		}
		server := newTestServer(t, uc)

		body, contentType := buildMultipart(t, 2)
		req := httptest.NewRequest(http.MethodPost, "/validate", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unexpected use case failure maps to 500", func(t *testing.T) {
		uc := &fakeBundleUC{err: goerr.New("archive write failed")}
		server := newTestServer(t, uc)

		body, contentType := buildMultipart(t, 1)
		req := httptest.NewRequest(http.MethodPost, "/validate", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusInternalServerError)
	})

	t.Run("empty upload rejected", func(t *testing.T) {
		uc := &fakeBundleUC{}
		server := newTestServer(t, uc)

		body, contentType := buildMultipart(t, 0)
		req := httptest.NewRequest(http.MethodPost, "/validate", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})
}
