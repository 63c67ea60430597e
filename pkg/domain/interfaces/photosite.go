package interfaces

import (
	"context"

	"github.com/hy-sato/picket/pkg/domain/model"
)

// ImageSource retrieves published image sets from the remote photo site
type ImageSource interface {
	// FetchSet resolves a code to its ordered image set. Individual image
	// fetch failures are dropped silently; only a transport failure of the
	// discovery step itself is returned as an error.
	FetchSet(ctx context.Context, code model.ResourceCode) (model.ImageSet, error)

	// Probe checks that the code's page exists. A 404 returns an error
	// tagged types.TagResourceNotFound; any other failure is returned as-is.
	Probe(ctx context.Context, code model.ResourceCode) error
}

// ImageResolver is the cache-fronted view of an ImageSource
type ImageResolver interface {
	Resolve(ctx context.Context, code model.ResourceCode) (model.ImageSet, error)
}

// CodeExtractor pulls a resource code out of uploaded image bytes.
// Failures are tagged with types.TagUnreadableImage or types.TagCodeNotFound.
type CodeExtractor interface {
	Extract(data []byte) (model.ResourceCode, error)
}
