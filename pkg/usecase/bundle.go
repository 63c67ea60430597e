package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hy-sato/picket/pkg/domain/interfaces"
	"github.com/hy-sato/picket/pkg/domain/model"
	"github.com/hy-sato/picket/pkg/domain/types"
)

// discardNotifier is the default when no notification sink is configured
type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, string) {}

const (
	defaultMaxItems     = 10
	defaultMaxItemBytes = 25 << 20 // 25MiB
)

var defaultAllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/heic",
	"image/heif",
}

// BundleUseCase implements the validate-resolve-package-ticket pipeline
type BundleUseCase struct {
	extractor interfaces.CodeExtractor
	resolver  interfaces.ImageResolver
	prober    interfaces.ImageSource
	tickets   interfaces.TicketStore
	notifier  interfaces.Notifier

	maxItems     int
	maxItemBytes int64
	allowedTypes []string

	now func() time.Time
	loc *time.Location
}

// BundleOption is a functional option for BundleUseCase configuration
type BundleOption func(*BundleUseCase)

// WithProber enables the remote existence check during validation
func WithProber(p interfaces.ImageSource) BundleOption {
	return func(uc *BundleUseCase) {
		uc.prober = p
	}
}

// WithNotifier sets the operational notification sink
func WithNotifier(n interfaces.Notifier) BundleOption {
	return func(uc *BundleUseCase) {
		uc.notifier = n
	}
}

// WithMaxItems sets the batch size ceiling
func WithMaxItems(n int) BundleOption {
	return func(uc *BundleUseCase) {
		uc.maxItems = n
	}
}

// WithMaxItemBytes sets the per-item size ceiling
func WithMaxItemBytes(n int64) BundleOption {
	return func(uc *BundleUseCase) {
		uc.maxItemBytes = n
	}
}

// WithAllowedTypes replaces the accepted media type set
func WithAllowedTypes(ts []string) BundleOption {
	return func(uc *BundleUseCase) {
		if len(ts) > 0 {
			uc.allowedTypes = ts
		}
	}
}

// WithNow replaces the clock (used by tests)
func WithNow(now func() time.Time) BundleOption {
	return func(uc *BundleUseCase) {
		uc.now = now
	}
}

// NewBundle creates the pipeline use case. Display timestamps use JST, the
// timezone of the photo site's events.
func NewBundle(
	extractor interfaces.CodeExtractor,
	resolver interfaces.ImageResolver,
	tickets interfaces.TicketStore,
	opts ...BundleOption,
) *BundleUseCase {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}

	uc := &BundleUseCase{
		extractor:    extractor,
		resolver:     resolver,
		tickets:      tickets,
		notifier:     discardNotifier{},
		maxItems:     defaultMaxItems,
		maxItemBytes: defaultMaxItemBytes,
		allowedTypes: defaultAllowedTypes,
		now:          time.Now,
		loc:          loc,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ValidateBatch runs the full pipeline for one upload batch
func (uc *BundleUseCase) ValidateBatch(ctx context.Context, items []model.UploadItem) (*model.BundleResult, error) {
	if len(items) > uc.maxItems {
		return nil, goerr.New(fmt.Sprintf("at most %d photos per request", uc.maxItems),
			goerr.T(types.TagBatchTooLarge),
			goerr.V("items", len(items)),
		)
	}

	codes, verrs := uc.validateItems(ctx, items)
	if len(codes) == 0 {
		return &model.BundleResult{Errors: verrs}, nil
	}

	sets, err := uc.resolveAll(ctx, codes)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve image sets")
	}

	// Captured once, after validation: the same instant names every archive
	// entry and the served file.
	timestamp := uc.now().In(uc.loc).Format("2006_01_02_15_04_05")

	blob, err := BuildArchive(sets, timestamp)
	if err != nil {
		return nil, err
	}

	ticket, err := uc.tickets.Issue(blob, timestamp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store archive")
	}

	ctxlog.From(ctx).Info("archive ticket issued",
		"ticket", ticket,
		"sets", len(sets),
		"errors", len(verrs),
		"bytes", len(blob),
	)
	uc.notifier.Notify(ctx, fmt.Sprintf("archive created: ticket=%s sets=%d", ticket, len(sets)))

	return &model.BundleResult{
		Ticket: ticket,
		Count:  len(sets),
		Errors: verrs,
	}, nil
}

// validateItems checks every item in order and returns the accepted codes in
// first-acceptance order plus the errors in item order. For each item the
// first failing check wins and the rest are skipped.
func (uc *BundleUseCase) validateItems(ctx context.Context, items []model.UploadItem) ([]model.ResourceCode, []model.ValidationError) {
	var codes []model.ResourceCode
	var verrs []model.ValidationError
	seen := map[model.ResourceCode]int{} // code -> first accepting item index

	for i := range items {
		item := &items[i]

		if item.Size() > uc.maxItemBytes {
			verrs = append(verrs, model.NewValidationError(model.KindTooLarge, item,
				"exceeds the size limit (%dMB)", uc.maxItemBytes>>20))
			continue
		}

		if !uc.typeAllowed(item.Data) {
			verrs = append(verrs, model.NewValidationError(model.KindUnsupportedFormat, item,
				"is not a supported image format"))
			continue
		}

		code, err := uc.extractor.Extract(item.Data)
		if err != nil {
			switch {
			case goerr.HasTag(err, types.TagUnreadableImage):
				verrs = append(verrs, model.NewValidationError(model.KindUnreadable, item,
					"could not be read as an image"))
			default:
				verrs = append(verrs, model.NewValidationError(model.KindCodeNotFound, item,
					"has no detectable QR code"))
			}
			continue
		}

		if uc.prober != nil {
			if err := uc.prober.Probe(ctx, code); err != nil {
				if goerr.HasTag(err, types.TagResourceNotFound) {
					verrs = append(verrs, model.NewValidationError(model.KindResourceGone, item,
						"points to a resource that was not found (404)"))
				} else {
					verrs = append(verrs, model.NewValidationError(model.KindResourceUnreachable, item,
						"points to a resource that could not be reached: %v", err))
				}
				continue
			}
		}

		if first, dup := seen[code]; dup {
			verrs = append(verrs, model.NewValidationError(model.KindDuplicateCode, item,
				"carries the same QR code as item %d and was skipped", first))
			continue
		}

		seen[code] = item.Index
		codes = append(codes, code)
	}

	return codes, verrs
}

// resolveAll fetches every accepted code's image set, preserving acceptance
// order. Resolutions run concurrently; any resolution failure is fatal for
// the request since a partial archive has no safe meaning.
func (uc *BundleUseCase) resolveAll(ctx context.Context, codes []model.ResourceCode) ([]model.ImageSet, error) {
	sets := make([]model.ImageSet, len(codes))
	eg, ctx := errgroup.WithContext(ctx)
	for i, code := range codes {
		eg.Go(func() error {
			set, err := uc.resolver.Resolve(ctx, code)
			if err != nil {
				return err
			}
			sets[i] = set
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

func (uc *BundleUseCase) typeAllowed(data []byte) bool {
	mime := mimetype.Detect(data)
	for _, t := range uc.allowedTypes {
		if mime.Is(t) {
			return true
		}
	}
	return false
}
