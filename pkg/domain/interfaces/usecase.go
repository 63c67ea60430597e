package interfaces

import (
	"context"

	"github.com/hy-sato/picket/pkg/domain/model"
)

// BundleUseCase validates an upload batch and turns it into a downloadable
// archive ticket
type BundleUseCase interface {
	// ValidateBatch runs the full pipeline: per-item validation, code
	// deduplication, image set resolution, archive construction and ticket
	// issuance. A batch over the item ceiling fails wholesale with an error
	// tagged types.TagBatchTooLarge. A batch where no item is accepted
	// returns a result with an empty ticket and the collected errors.
	ValidateBatch(ctx context.Context, items []model.UploadItem) (*model.BundleResult, error)
}
