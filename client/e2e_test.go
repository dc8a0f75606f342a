package client_test

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SchnorcherSepp/blobbench/client"
	impl "github.com/SchnorcherSepp/blobbench/defaultimpl"
	"github.com/SchnorcherSepp/blobbench/generator"
	"github.com/SchnorcherSepp/blobbench/manifest"
	"github.com/SchnorcherSepp/blobbench/server"
)

// TestEndToEnd generates files, serves them and fetches a sample with both methods.
func TestEndToEnd(t *testing.T) {
	store := impl.NewRamService()
	cfg := generator.Config{
		Count:     5,
		OutputDir: filepath.Join(t.TempDir(), "random_files"),
		MinSize:   "1KB",
		MaxSize:   "2KB",
	}

	g, err := generator.New(cfg, store, rand.New(rand.NewSource(3)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	srv, err := server.New(cfg.FilesPath(), store)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	// fetch 3 with the filesystem method
	out := new(bytes.Buffer)
	ccfg := client.Config{Count: 3, Method: client.MethodFilesystem, URL: ts.URL + "/", Summary: cfg.ManifestPath()}
	res, err := client.Run(context.Background(), ccfg, ts.Client(), rand.New(rand.NewSource(9)), out)
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 3 || res.Elapsed < 0 || res.Bytes < 3000 || res.Bytes >= 6000 {
		t.Fatalf("wrong result: %+v", res)
	}
	if n := strings.Count(out.String(), "successfully.\n"); n != 3 {
		t.Fatalf("%d success lines:\n%s", n, out)
	}
	if !strings.Contains(out.String(), "Fetched 3 in ") {
		t.Fatalf("missing summary line:\n%s", out)
	}

	// the same names return the same bytes with both methods
	names, err := manifest.Read(cfg.ManifestPath())
	if err != nil {
		t.Fatal(err)
	}
	sample, err := manifest.Sample(names, 3, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range sample {
		fs := download(t, ts, client.MethodFilesystem, name)
		blob := download(t, ts, client.MethodBlob, name)
		if !bytes.Equal(fs, blob) || len(fs) < 1000 || len(fs) >= 2000 {
			t.Fatalf("%s: filesystem %d bytes, blob %d bytes", name, len(fs), len(blob))
		}
	}

	// the blob method through the client
	c, err := client.New(ts.URL, ts.Client(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchAll(context.Background(), client.MethodBlob, sample); err != nil {
		t.Fatal(err)
	}
}

func download(t *testing.T, ts *httptest.Server, method, name string) []byte {
	resp, err := ts.Client().Get(ts.URL + "/" + method + "/" + name)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s %s: %s", method, name, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
