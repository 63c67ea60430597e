package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hy-sato/picket/pkg/domain/interfaces"
	"github.com/hy-sato/picket/pkg/domain/model"
	"github.com/hy-sato/picket/pkg/domain/types"
)

// maxMultipartMemory is the in-memory budget before parts spill to disk
const maxMultipartMemory = 32 << 20

// ValidateHandler handles POST /validate upload batches
type ValidateHandler struct {
	bundleUC interfaces.BundleUseCase
	maxItems int
}

// NewValidateHandler creates a new ValidateHandler
func NewValidateHandler(bundleUC interfaces.BundleUseCase, maxItems int) *ValidateHandler {
	return &ValidateHandler{
		bundleUC: bundleUC,
		maxItems: maxItems,
	}
}

// Handle reads the multipart batch and runs the validation pipeline. The
// part count is checked before any part is read so an oversized batch is
// rejected wholesale.
func (h *ValidateHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		logger.Warn("Failed to parse multipart request", "error", err)
		writeError(ctx, w, goerr.Wrap(err, "invalid multipart request"), http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Warn("Failed to clean up multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(ctx, w, goerr.New("no files uploaded"), http.StatusBadRequest)
		return
	}
	if len(headers) > h.maxItems {
		writeJSON(ctx, w, http.StatusBadRequest, &model.ValidateResponse{
			OK:     false,
			Errors: []string{fmt.Sprintf("at most %d photos per request", h.maxItems)},
		})
		return
	}

	items := make([]model.UploadItem, 0, len(headers))
	for i, fh := range headers {
		part, err := fh.Open()
		if err != nil {
			writeError(ctx, w, goerr.Wrap(err, "failed to open upload part"), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			writeError(ctx, w, goerr.Wrap(err, "failed to read upload part"), http.StatusBadRequest)
			return
		}
		items = append(items, model.UploadItem{
			Index:    i + 1,
			Filename: fh.Filename,
			Data:     data,
		})
	}

	result, err := h.bundleUC.ValidateBatch(ctx, items)
	if err != nil {
		if goerr.HasTag(err, types.TagBatchTooLarge) {
			writeJSON(ctx, w, http.StatusBadRequest, &model.ValidateResponse{
				OK:     false,
				Errors: []string{err.Error()},
			})
			return
		}
		logger.Error("Failed to process upload batch", "error", err)
		writeError(ctx, w, err, http.StatusInternalServerError)
		return
	}

	if result.Ticket == "" {
		// No item survived validation
		writeJSON(ctx, w, http.StatusOK, &model.ValidateResponse{
			OK:     false,
			Errors: result.ErrorMessages(),
		})
		return
	}

	writeJSON(ctx, w, http.StatusOK, &model.ValidateResponse{
		OK:     true,
		Ticket: string(result.Ticket),
		Count:  result.Count,
		Errors: result.ErrorMessages(),
	})
}
