package http

import (
	"net/http"

	"github.com/hy-sato/picket/pkg/domain/model"
	"github.com/hy-sato/picket/pkg/domain/types"
)

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	status := &model.HealthStatus{
		Status:  "healthy",
		Service: "picket",
		Version: types.Version,
	}

	writeJSON(r.Context(), w, http.StatusOK, status)
}
