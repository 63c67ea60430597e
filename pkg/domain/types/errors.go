package types

import "github.com/m-mizutani/goerr/v2"

// Error tags used to classify failures across package boundaries.
var (
	// TagBatchTooLarge marks a whole-batch rejection: the request carried
	// more items than the configured ceiling and nothing was processed.
	TagBatchTooLarge = goerr.NewTag("batch_too_large")

	// TagResourceNotFound marks an existence probe that got a 404 from the
	// remote photo site.
	TagResourceNotFound = goerr.NewTag("resource_not_found")

	// TagUnreadableImage marks upload bytes that could not be decoded as an
	// image at all.
	TagUnreadableImage = goerr.NewTag("unreadable_image")

	// TagCodeNotFound marks an image that decoded fine but carried no QR
	// code matching the expected URL pattern in any orientation.
	TagCodeNotFound = goerr.NewTag("code_not_found")
)
