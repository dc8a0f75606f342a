// Command client fetches N random files of the manifest concurrently and prints the elapsed time.
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

	"github.com/SchnorcherSepp/blobbench/client"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := client.Config{
		Method:  client.MethodFilesystem,
		URL:     client.DefaultURL,
		Summary: client.DefaultSummary,
	}

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Method, "method", cfg.Method, "retrieval method: filesystem or gridfs")
	fs.StringVar(&cfg.Method, "m", cfg.Method, "retrieval method (shorthand)")
	fs.StringVar(&cfg.URL, "url", cfg.URL, "server base url")
	fs.StringVar(&cfg.Summary, "summary", cfg.Summary, "manifest written by generate")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: client [flags] N")
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

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	if _, err := client.Run(ctx, cfg, nil, rnd, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
