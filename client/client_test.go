package client_test

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SchnorcherSepp/blobbench/client"
	"github.com/SchnorcherSepp/blobbench/manifest"
)

// testHandler answers /<method>/<name> with the name as body.
// Names starting with "bad" get a 404, names starting with "slow" block until the request is canceled.
func testHandler(requests *int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(requests, 1)
		name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		switch {
		case strings.HasPrefix(name, "bad"):
			http.NotFound(w, r)
		case strings.HasPrefix(name, "slow"):
			select {
			case <-r.Context().Done():
			case <-time.After(10 * time.Second):
			}
		default:
			_, _ = w.Write([]byte(r.URL.Path))
		}
	})
}

func TestValidateMethod(t *testing.T) {
	for _, m := range []string{client.MethodFilesystem, client.MethodBlob} {
		if err := client.ValidateMethod(m); err != nil {
			t.Fatal(err)
		}
	}
	for _, m := range []string{"", "s3", "GRIDFS"} {
		if err := client.ValidateMethod(m); !errors.Is(err, client.ErrInvalidMethod) {
			t.Fatalf("%q: wrong error: %v", m, err)
		}
	}
}

func TestNew(t *testing.T) {
	for _, u := range []string{"", "localhost:8000", "ftp://localhost/", "http://", "%"} {
		if _, err := client.New(u, nil, nil); err == nil {
			t.Fatalf("%q: no error", u)
		}
	}
	if _, err := client.New(client.DefaultURL, nil, nil); err != nil {
		t.Fatal(err)
	}
}

func TestClient_FetchAll(t *testing.T) {
	var requests int64
	ts := httptest.NewServer(testHandler(&requests))
	defer ts.Close()

	out := new(bytes.Buffer)
	c, err := client.New(ts.URL+"/", ts.Client(), out)
	if err != nil {
		t.Fatal(err)
	}

	names := []string{"aa", "bb", "cc", "dd"}
	res, err := c.FetchAll(context.Background(), client.MethodBlob, names)
	if err != nil {
		t.Fatal(err)
	}

	if res.Count != 4 || atomic.LoadInt64(&requests) != 4 {
		t.Fatalf("wrong count: %d, requests %d", res.Count, atomic.LoadInt64(&requests))
	}
	if res.Bytes != 4*int64(len("/gridfs/aa")) {
		t.Fatalf("wrong bytes: %d", res.Bytes)
	}
	if res.Elapsed < 0 {
		t.Fatalf("negative elapsed time")
	}
	for _, n := range names {
		if !strings.Contains(out.String(), "Retrieved "+n+" successfully.\n") {
			t.Fatalf("missing line for %s:\n%s", n, out)
		}
	}
	if strings.Count(out.String(), "\n") != 4 {
		t.Fatalf("wrong output:\n%s", out)
	}
}

func TestClient_FetchAll_Status(t *testing.T) {
	var requests int64
	ts := httptest.NewServer(testHandler(&requests))
	defer ts.Close()

	c, err := client.New(ts.URL, ts.Client(), nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := c.FetchAll(context.Background(), client.MethodFilesystem, []string{"aa", "bad1", "bb"})
	if !errors.Is(err, client.ErrStatus) {
		t.Fatalf("wrong error: %v", err)
	}
	// only successful requests are counted
	if res.Count > 2 || res.Bytes != int64(res.Count)*int64(len("/filesystem/aa")) {
		t.Fatalf("wrong partial result: %+v", res)
	}
	if !strings.Contains(err.Error(), "bad1") || !strings.Contains(err.Error(), "404") {
		t.Fatalf("error without key or status: %v", err)
	}
}

func TestClient_FetchAll_Cancel(t *testing.T) {
	var requests int64
	ts := httptest.NewServer(testHandler(&requests))
	defer ts.Close()

	c, err := client.New(ts.URL, ts.Client(), nil)
	if err != nil {
		t.Fatal(err)
	}

	// the failure cancels the blocked siblings
	start := time.Now()
	res, err := c.FetchAll(context.Background(), client.MethodBlob, []string{"slow1", "slow2", "bad1"})
	if !errors.Is(err, client.ErrStatus) {
		t.Fatalf("wrong error: %v", err)
	}
	if res.Count != 0 || res.Bytes != 0 {
		t.Fatalf("failed requests counted: %+v", res)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("siblings not canceled")
	}
}

func TestClient_FetchAll_InvalidMethod(t *testing.T) {
	c, err := client.New(client.DefaultURL, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchAll(context.Background(), "ftp", []string{"aa"}); !errors.Is(err, client.ErrInvalidMethod) {
		t.Fatalf("wrong error: %v", err)
	}
}

func TestRun_SampleSize(t *testing.T) {
	var requests int64
	ts := httptest.NewServer(testHandler(&requests))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), manifest.FileName)
	if err := manifest.Write(path, []string{"aa", "bb"}); err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{0, 3} {
		cfg := client.Config{Count: n, Method: client.MethodFilesystem, URL: ts.URL, Summary: path}
		_, err := client.Run(context.Background(), cfg, ts.Client(), rand.New(rand.NewSource(1)), nil)
		if !errors.Is(err, manifest.ErrSampleSize) {
			t.Fatalf("n=%d: wrong error: %v", n, err)
		}
	}
	if atomic.LoadInt64(&requests) != 0 {
		t.Fatalf("%d requests sent", atomic.LoadInt64(&requests))
	}
}

func TestRun(t *testing.T) {
	var requests int64
	ts := httptest.NewServer(testHandler(&requests))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), manifest.FileName)
	if err := manifest.Write(path, []string{"aa", "bb", "cc"}); err != nil {
		t.Fatal(err)
	}

	out := new(bytes.Buffer)
	cfg := client.Config{Count: 2, Method: client.MethodFilesystem, URL: ts.URL, Summary: path}
	res, err := client.Run(context.Background(), cfg, ts.Client(), rand.New(rand.NewSource(1)), out)
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 || atomic.LoadInt64(&requests) != 2 {
		t.Fatalf("wrong count %d, requests %d", res.Count, atomic.LoadInt64(&requests))
	}
	if strings.Count(out.String(), "successfully.") != 2 || !strings.Contains(out.String(), "Fetched 2 in ") {
		t.Fatalf("wrong output:\n%s", out)
	}

	// missing manifest
	cfg.Summary = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := client.Run(context.Background(), cfg, ts.Client(), rand.New(rand.NewSource(1)), nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("wrong error: %v", err)
	}
}
