// Command generate creates N random files, writes them to the output directory,
// uploads them to the blob store and writes the manifest.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/SchnorcherSepp/blobbench/generator"
	"github.com/SchnorcherSepp/blobbench/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := generator.Config{
		OutputDir: generator.DefaultOutputDir,
		MinSize:   generator.DefaultMinSize,
		MaxSize:   generator.DefaultMaxSize,
	}
	storeCfg := store.Defaults()

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "output directory")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "output directory (shorthand)")
	fs.StringVar(&cfg.MinSize, "min-size", cfg.MinSize, "minimum file size (B, KB, KiB, MB, MiB, GB, GiB)")
	fs.StringVar(&cfg.MaxSize, "max-size", cfg.MaxSize, "maximum file size, exclusive")
	store.RegisterFlags(fs, &storeCfg)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: generate [flags] N")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "invalid number of files %q\n", fs.Arg(0))
		return 2
	}
	cfg.Count = n

	// check everything before the first connection
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if err := storeCfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := store.Open(ctx, storeCfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer s.Close()

	g, err := generator.New(cfg, s, rand.New(rand.NewSource(time.Now().UnixNano())), stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if _, err := g.Run(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
