package manifest_test

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/SchnorcherSepp/blobbench/manifest"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), manifest.FileName)
	names := []string{"aa", "bb", "cc"}

	if err := manifest.Write(path, names); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "aa\nbb\ncc" {
		t.Fatalf("wrong file content: %q", raw)
	}

	got, err := manifest.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, names) {
		t.Fatalf("wrong names: %v", got)
	}

	// overwrite
	if err := manifest.Write(path, names[:1]); err != nil {
		t.Fatal(err)
	}
	got, _ = manifest.Read(path)
	if len(got) != 1 || got[0] != "aa" {
		t.Fatalf("manifest not replaced: %v", got)
	}
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), manifest.FileName)

	if _, err := manifest.Read(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("wrong error: %v", err)
	}

	if err := os.WriteFile(path, []byte("aa\r\nbb \n\ncc\n"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := manifest.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"aa", "bb", "cc"}) {
		t.Fatalf("wrong names: %q", got)
	}
}

func TestSample(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	rnd := rand.New(rand.NewSource(1))

	for n := 1; n <= len(names); n++ {
		got, err := manifest.Sample(names, n, rnd)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != n {
			t.Fatalf("wrong sample size: %d != %d", len(got), n)
		}
		seen := make(map[string]bool)
		for _, g := range got {
			if seen[g] {
				t.Fatalf("duplicate name %s in %v", g, got)
			}
			seen[g] = true
		}
	}

	// input unchanged
	if !reflect.DeepEqual(names, []string{"a", "b", "c", "d", "e"}) {
		t.Fatalf("input modified: %v", names)
	}
}

func TestSample_Invalid(t *testing.T) {
	names := []string{"a", "b"}
	rnd := rand.New(rand.NewSource(1))

	for _, n := range []int{0, -1, 3} {
		if _, err := manifest.Sample(names, n, rnd); !errors.Is(err, manifest.ErrSampleSize) {
			t.Fatalf("n=%d: wrong error: %v", n, err)
		}
	}
	if _, err := manifest.Sample(nil, 1, rnd); !errors.Is(err, manifest.ErrSampleSize) {
		t.Fatalf("wrong error: %v", err)
	}
}

func TestSample_Uniform(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	rnd := rand.New(rand.NewSource(42))
	count := make(map[string]int)

	const rounds = 4000
	for i := 0; i < rounds; i++ {
		got, _ := manifest.Sample(names, 1, rnd)
		count[got[0]]++
	}
	for _, n := range names {
		if c := count[n]; c < rounds/4-200 || c > rounds/4+200 {
			t.Fatalf("not uniform: %v", count)
		}
	}
}
