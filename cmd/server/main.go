// Command server serves the generated files on /filesystem/{key} and /gridfs/{key}.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	impl "github.com/SchnorcherSepp/blobbench/defaultimpl"
	interf "github.com/SchnorcherSepp/blobbench/interfaces"
	"github.com/SchnorcherSepp/blobbench/server"
	"github.com/SchnorcherSepp/blobbench/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	var (
		addr    string
		dir     string
		cacheMB int
		debug   uint
	)
	storeCfg := store.Defaults()

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	fs.StringVar(&dir, "dir", server.DefaultDir, "directory of the generated files")
	fs.IntVar(&cacheMB, "cache-mb", 0, "sector cache for the blob route in MB (0: off)")
	fs.UintVar(&debug, "debug", impl.DebugOff, "debug level: 0=off, 1=low, 2=high")
	store.RegisterFlags(fs, &storeCfg)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return 2
	}
	if cacheMB < 0 || debug > impl.DebugHigh {
		fmt.Fprintln(stderr, "invalid -cache-mb or -debug")
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

	// the offline index lets cached reads resume at an offset
	if err := s.Update(); err != nil {
		log.Printf("WARNING: server: update store index: %v", err)
	}

	opts := []server.Option{server.WithDebug(uint8(debug))}
	if cacheMB > 0 {
		cache := impl.NewCache(cacheMB)
		opts = append(opts, server.WithCache(cache))
		log.Printf("INFO: server: sector cache %d bytes (sector size %d)", cache.Size(), interf.SectorSize)
	}

	h, err := server.New(dir, s, opts...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if err := server.ListenAndServe(ctx, addr, h); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
