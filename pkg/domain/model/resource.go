package model

// ResourceCode identifies one published live-photo set on the remote photo
// site. It is the capture group of the QR URL pattern and is opaque beyond
// string equality; it keys both resolution and caching.
type ResourceCode string

// ImageSet is the ordered list of image blobs published under one
// ResourceCode, in the discovery order of the remote index. Immutable once
// the fetch completes. An empty set is a valid outcome.
type ImageSet [][]byte

// BundleResult is the outcome of a successful (possibly partial) batch
// validation: a redeemable ticket, the number of resolved sets, and the
// per-item errors collected along the way.
type BundleResult struct {
	Ticket Ticket
	Count  int
	Errors []ValidationError
}

// ErrorMessages flattens the validation errors into user-facing strings
func (r *BundleResult) ErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}
