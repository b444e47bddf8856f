package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/biji"
	"github.com/aretw0/biji/pkg/adapters/sqlite"
	"github.com/aretw0/biji/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	query := flag.String("query", "note 42", "Query used for the search run")
	keep := flag.Bool("keep", false, "Keep the benchmark database after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "biji_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()
	path := filepath.Join(benchDir, sqlite.DefaultName)
	ctx := context.Background()

	fmt.Printf("Generating %d notes in %s...\n", *count, path)
	startGen := time.Now()

	// Generation goes through the repository directly, one transaction per
	// note, the same way the editor writes.
	gw, err := sqlite.Open(ctx, sqlite.Config{Path: path})
	if err != nil {
		panic(err)
	}
	repo := gw.Notes()
	for i := 0; i < *count; i++ {
		n := core.Note{
			Title:   fmt.Sprintf("Note %d", i),
			Content: fmt.Sprintf("Benchmark note %d.\nThis is a test note.", i),
		}
		if _, err := repo.Add(ctx, n); err != nil {
			panic(err)
		}
	}
	if err := gw.Close(); err != nil {
		panic(err)
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Run 1: open + load, as every CLI command does.
	fmt.Println("Running Load...")
	startLoad := time.Now()
	a, err := biji.New(ctx, path, biji.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	defer a.Close(ctx)
	loadDuration := time.Since(startLoad)
	fmt.Printf("Load Result: %v (Items: %d)\n", loadDuration, len(a.Notes()))

	// Run 2: reload on an open connection, as after every mutation.
	fmt.Println("Running Reload...")
	startReload := time.Now()
	if err := a.Reload(ctx); err != nil {
		panic(err)
	}
	reloadDuration := time.Since(startReload)

	// Run 3: filter the cached list.
	startSearch := time.Now()
	matches := a.Search(*query)
	searchDuration := time.Since(startSearch)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes):\n", *count)
	fmt.Printf("  Load:   %v\n", loadDuration)
	fmt.Printf("  Reload: %v\n", reloadDuration)
	fmt.Printf("  Search: %v (%d matches for %q)\n", searchDuration, len(matches), *query)
	fmt.Printf("  Stats:  %s\n", a.Stats())
	fmt.Printf("--------------------------------------------------\n")
}
