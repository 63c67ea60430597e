package photosite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hy-sato/picket/pkg/domain/model"
	"github.com/hy-sato/picket/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// imageNamePattern selects image references on the index page
var imageNamePattern = regexp.MustCompile(`(?i)\.(jpe?g|png)$`)

const defaultTimeout = 10 * time.Second

// discoverFunc lists the image locations published under a code, in the
// order the archive should preserve
type discoverFunc func(ctx context.Context, c *Client, code model.ResourceCode) ([]*url.URL, error)

// Client retrieves published live-photo sets from the remote photo site
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	discover   discoverFunc
	enumCount  int
}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used by tests)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every outbound call. A call that times out is treated
// like any other failed call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithFixedEnumeration switches discovery from index scraping to a fixed
// list of n well-known names under the code's namespace.
func WithFixedEnumeration(n int) Option {
	return func(c *Client) {
		c.enumCount = n
		c.discover = discoverByEnumeration
	}
}

// New creates a photo site client rooted at baseURL. Discovery defaults to
// scraping the code's index page for image references.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid photo site base URL", goerr.V("url", baseURL))
	}

	client := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		discover:   discoverByIndex,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// URLPattern returns the anchored pattern a QR payload must match to be
// resolvable against this base URL. The capture group is the resource code.
func URLPattern(baseURL string) (*regexp.Regexp, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid photo site base URL", goerr.V("url", baseURL))
	}
	base := strings.TrimSuffix(u.String(), "/")
	return regexp.Compile("^" + regexp.QuoteMeta(base) + `/livephoto/([A-Za-z0-9_-]+)/$`)
}

// pageURL returns the index page URL for a code. The trailing slash matters:
// relative image references resolve against the code's directory.
func (c *Client) pageURL(code model.ResourceCode) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/livephoto/" + string(code) + "/"
	return &u
}

// FetchSet resolves a code into its ordered image set. Each location is
// fetched concurrently; a failed location is dropped without affecting its
// siblings, and the surviving blobs keep discovery order.
func (c *Client) FetchSet(ctx context.Context, code model.ResourceCode) (model.ImageSet, error) {
	locs, err := c.discover(ctx, c, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to discover image locations", goerr.V("code", code))
	}

	blobs := make([][]byte, len(locs))
	eg, ctx := errgroup.WithContext(ctx)
	for i, loc := range locs {
		eg.Go(func() error {
			data, err := c.get(ctx, loc)
			if err != nil {
				ctxlog.From(ctx).Debug("dropped image fetch",
					"url", loc.String(),
					"code", code,
					"error", err,
				)
				return nil
			}
			blobs[i] = data
			return nil
		})
	}
	_ = eg.Wait()

	set := make(model.ImageSet, 0, len(blobs))
	for _, b := range blobs {
		if b != nil {
			set = append(set, b)
		}
	}
	return set, nil
}

// Probe checks that the code's index page exists. Only a 404 counts as
// "gone"; other statuses pass so that a flaky origin does not reject an
// otherwise valid upload.
func (c *Client) Probe(ctx context.Context, code model.ResourceCode) error {
	pageURL := c.pageURL(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return goerr.Wrap(err, "failed to build probe request", goerr.V("url", pageURL.String()))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to reach photo site", goerr.V("url", pageURL.String()))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return goerr.New("resource not found",
			goerr.T(types.TagResourceNotFound),
			goerr.V("code", code),
		)
	}
	return nil
}

// discoverByIndex fetches the code's index page and extracts image
// references in document order. A non-200 index yields an empty set.
func discoverByIndex(ctx context.Context, c *Client, code model.ResourceCode) ([]*url.URL, error) {
	pageURL := c.pageURL(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build index request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch index page", goerr.V("url", pageURL.String()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse index page", goerr.V("url", pageURL.String()))
	}

	var locs []*url.URL
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || !imageNamePattern.MatchString(src) {
			return
		}
		ref, err := url.Parse(strings.TrimPrefix(src, "./"))
		if err != nil {
			return
		}
		locs = append(locs, pageURL.ResolveReference(ref))
	})
	return locs, nil
}

// discoverByEnumeration lists n well-known names without touching the index
func discoverByEnumeration(_ context.Context, c *Client, code model.ResourceCode) ([]*url.URL, error) {
	pageURL := c.pageURL(code)
	locs := make([]*url.URL, 0, c.enumCount)
	for i := 1; i <= c.enumCount; i++ {
		ref, _ := url.Parse(fmt.Sprintf("%03d.jpeg", i))
		locs = append(locs, pageURL.ResolveReference(ref))
	}
	return locs, nil
}

// get fetches one image location, returning its bytes only on a 200
func (c *Client) get(ctx context.Context, loc *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build image request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status", goerr.V("status", resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}
