// Package client fetches a batch of blobs concurrently from the benchmark server
// and measures the time of the whole batch.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Retrieval methods. The method is the first path segment on the server.
const (
	MethodFilesystem = "filesystem"
	MethodBlob       = "gridfs"
)

// ErrStatus is returned for every response with a non-2xx status.
var ErrStatus = errors.New("unexpected http status")

// ErrInvalidMethod is returned for an unknown retrieval method.
var ErrInvalidMethod = errors.New("invalid method")

// ValidateMethod accepts MethodFilesystem and MethodBlob.
func ValidateMethod(method string) error {
	switch method {
	case MethodFilesystem, MethodBlob:
		return nil
	default:
		return fmt.Errorf("%w: %q (%s or %s)", ErrInvalidMethod, method, MethodFilesystem, MethodBlob)
	}
}

// Result describes one finished batch.
type Result struct {
	Count   int           // successfully fetched files
	Bytes   int64         // received body bytes
	Elapsed time.Duration // wall time of the batch
}

// Client fetches blobs from one server.
type Client struct {
	base string
	http *http.Client

	outMux *sync.Mutex // protect out
	out    io.Writer
}

// New returns a client for the server at baseURL (e.g. http://localhost:8000/).
// hc=nil uses http.DefaultClient; out gets one line per fetched file.
func New(baseURL string, hc *http.Client, out io.Writer) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client/New: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("client/New: invalid base url %q", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	if out == nil {
		out = io.Discard
	}

	return &Client{
		base:   u.String(),
		http:   hc,
		outMux: new(sync.Mutex),
		out:    out,
	}, nil
}

// FetchAll requests all names concurrently with the given method.
// The first failure cancels the remaining requests and is returned together with
// the partial result of the requests that succeeded.
func (c *Client) FetchAll(ctx context.Context, method string, names []string) (Result, error) {
	if err := ValidateMethod(method); err != nil {
		return Result{}, err
	}

	var total, count int64
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			n, err := c.fetch(gctx, method, name)
			if err != nil {
				return err
			}
			atomic.AddInt64(&total, n)
			atomic.AddInt64(&count, 1)
			c.printf("Retrieved %s successfully.\n", name)
			return nil
		})
	}
	err := g.Wait()

	res := Result{
		Count:   int(atomic.LoadInt64(&count)),
		Bytes:   atomic.LoadInt64(&total),
		Elapsed: time.Since(start),
	}
	return res, err
}

//--------  HELPER  --------------------------------------------------------------------------------------------------//

// fetch requests one file and drains the body. It returns the body size.
func (c *Client) fetch(ctx context.Context, method, name string) (int64, error) {
	u, err := url.JoinPath(c.base, method, name)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("%w: %s %s: %s", ErrStatus, method, name, resp.Status)
	}

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return n, fmt.Errorf("%s %s: %w", method, name, err)
	}
	return n, nil
}

func (c *Client) printf(format string, a ...interface{}) {
	c.outMux.Lock() // LOCK
	defer c.outMux.Unlock()

	fmt.Fprintf(c.out, format, a...)
}
