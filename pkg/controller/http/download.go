package http

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hy-sato/picket/pkg/domain/interfaces"
	"github.com/hy-sato/picket/pkg/domain/model"
)

// downloadChunkSize is the streaming buffer size (1MiB)
const downloadChunkSize = 1 << 20

// DownloadHandler handles GET /download/{ticket}
type DownloadHandler struct {
	tickets interfaces.TicketStore
}

// NewDownloadHandler creates a new DownloadHandler
func NewDownloadHandler(tickets interfaces.TicketStore) *DownloadHandler {
	return &DownloadHandler{tickets: tickets}
}

// Handle streams the stored archive behind a ticket. Tickets stay redeemable
// for repeated downloads until they expire; deletion is the sweeper's job.
func (h *DownloadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	ticket := model.Ticket(chi.URLParam(r, "ticket"))
	rec, ok := h.tickets.Peek(ticket)
	if !ok {
		writeError(ctx, w, goerr.New("invalid or expired ticket, please validate again"),
			http.StatusNotFound)
		return
	}

	f, err := os.Open(rec.Path)
	if err != nil {
		// Swept between Peek and Open, or storage trouble
		logger.Warn("Failed to open archive file", "path", rec.Path, "error", err)
		writeError(ctx, w, goerr.New("invalid or expired ticket, please validate again"),
			http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="picket_livephoto_%s.zip"`, rec.Timestamp))

	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(w, f, buf); err != nil {
		logger.Warn("Archive download interrupted", "ticket", ticket, "error", err)
	}
}
