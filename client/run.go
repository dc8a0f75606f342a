package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"

	"github.com/SchnorcherSepp/blobbench/manifest"
)

// Default values of the command line.
const (
	DefaultURL     = "http://localhost:8000/"
	DefaultSummary = "./random_files/summary.txt"
)

// Config describes one benchmark run.
type Config struct {
	Count   int    // files per batch
	Method  string // MethodFilesystem or MethodBlob
	URL     string // server base url
	Summary string // manifest path
}

// Validate checks the config. It does not touch the filesystem or the network.
func (c Config) Validate() error {
	if c.Count < 1 {
		return fmt.Errorf("%w: %d", manifest.ErrSampleSize, c.Count)
	}
	if c.Summary == "" {
		return errors.New("empty summary path")
	}
	return ValidateMethod(c.Method)
}

// Run samples the manifest, fetches the sample and prints the elapsed time to out.
// Sampling errors happen before any request is sent.
func Run(ctx context.Context, cfg Config, hc *http.Client, rnd *rand.Rand, out io.Writer) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if out == nil {
		out = io.Discard
	}

	names, err := manifest.Read(cfg.Summary)
	if err != nil {
		return Result{}, err
	}
	sample, err := manifest.Sample(names, cfg.Count, rnd)
	if err != nil {
		return Result{}, err
	}

	c, err := New(cfg.URL, hc, out)
	if err != nil {
		return Result{}, err
	}

	res, err := c.FetchAll(ctx, cfg.Method, sample)
	if err != nil {
		return res, err
	}

	fmt.Fprintf(out, "Fetched %d in %v seconds.\n", res.Count, res.Elapsed.Seconds())
	return res, nil
}
