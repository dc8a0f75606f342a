// Package generator creates random files for the benchmark.
// Every file is written to the local filesystem and uploaded to the blob store
// under its SHA-256 digest. The digests are listed in the manifest.
package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	interf "github.com/SchnorcherSepp/blobbench/interfaces"
	"github.com/SchnorcherSepp/blobbench/manifest"
)

const packageName = "generator"

// maxDraws limits the attempts to draw content that is new in this run.
const maxDraws = 10000

// Generator creates the benchmark data set.
type Generator struct {
	cfg   Config
	store interf.Service
	rnd   *rand.Rand
	out   io.Writer

	min, max int64
}

// New returns a generator. The config is validated before anything is written.
// rnd is the source of sizes and content; out gets the progress lines.
func New(cfg Config, store interf.Service, rnd *rand.Rand, out io.Writer) (*Generator, error) {
	min, max, err := cfg.sizes()
	if err != nil {
		return nil, err
	}
	if store == nil || rnd == nil {
		return nil, errors.New("generator/New: store or rnd is nil")
	}
	if out == nil {
		out = io.Discard
	}

	return &Generator{
		cfg:   cfg,
		store: store,
		rnd:   rnd,
		out:   out,
		min:   min,
		max:   max,
	}, nil
}

// Run generates all files and writes the manifest. It returns the digests in creation order.
// Any write or upload error aborts the run; files already written are left in place.
func (g *Generator) Run(ctx context.Context) ([]string, error) {
	dir := g.cfg.FilesPath()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}

	fmt.Fprintf(g.out, "Generating %d files between %s and %s...\n", g.cfg.Count, g.cfg.MinSize, g.cfg.MaxSize)
	fmt.Fprintf(g.out, "%s = %d\n", g.cfg.MinSize, g.min)
	fmt.Fprintf(g.out, "%s = %d\n", g.cfg.MaxSize, g.max)

	names := make([]string, 0, g.cfg.Count)
	seen := make(map[string]bool, g.cfg.Count)
	for i := 1; i <= g.cfg.Count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, err := g.generate(dir, seen)
		if err != nil {
			return nil, fmt.Errorf("file %d/%d: %w", i, g.cfg.Count, err)
		}
		fmt.Fprintf(g.out, "%d/%d: %s\n", i, g.cfg.Count, name)
		names = append(names, name)
	}

	// stores with an offline index must see the new blobs
	if err := g.store.Update(); err != nil {
		log.Printf("WARNING: %s/Run: update store index: %v", packageName, err)
	}

	path := g.cfg.ManifestPath()
	fmt.Fprintf(g.out, "Generating summary in %s...\n", path)
	if err := manifest.Write(path, names); err != nil {
		return nil, err
	}

	fmt.Fprintln(g.out, "Done!")
	return names, nil
}

//--------  HELPER  --------------------------------------------------------------------------------------------------//

// drawSize returns a size in [min, max), or min if both are equal.
func (g *Generator) drawSize() int64 {
	if g.max <= g.min {
		return g.min
	}
	return g.min + g.rnd.Int63n(g.max-g.min)
}

// generate writes one random file and uploads the same bytes.
// Content already in seen is drawn again, so the names of a run are distinct.
func (g *Generator) generate(dir string, seen map[string]bool) (string, error) {
	var content []byte
	var name string
	for draw := 0; ; draw++ {
		if draw >= maxDraws {
			return "", fmt.Errorf("no new content after %d draws", maxDraws)
		}

		content = make([]byte, g.drawSize())
		if _, err := g.rnd.Read(content); err != nil {
			return "", err
		}
		sum := sha256.Sum256(content)
		name = hex.EncodeToString(sum[:])
		if !seen[name] {
			seen[name] = true
			break
		}
	}

	if err := os.WriteFile(filepath.Join(dir, name), content, 0600); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := g.store.Save(name, bytes.NewReader(content), 0); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return name, nil
}
