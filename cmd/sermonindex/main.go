// Command sermonindex indexes and searches a personal sermon corpus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sermonindex/internal/adapters/driving/cli"
	"github.com/custodia-labs/sermonindex/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(app.Options{HomeDir: os.Getenv("SERMONINDEX_HOME")})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := rt.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Indexer:    rt.Indexer,
		Watcher:    rt.Watcher,
		Search:     rt.Search,
		Documents:  rt.Documents,
		Embeddings: rt.Embeddings,
		Chat:       rt.Chat,
		Settings:   rt.Settings,
	})

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
