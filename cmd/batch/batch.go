package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/invoicer/internal/invoices"
)

type processor interface {
	Process(ctx context.Context, path, name string) invoices.Result
}

// summary counts results by status for one batch.
type summary struct {
	Total     int
	Succeeded int
	ByStatus  map[invoices.Status]int
}

func (s summary) Failed() int {
	return s.Total - s.Succeeded
}

// pdfFiles lists the .pdf files directly under dir in name order.
func pdfFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func runBatch(ctx context.Context, sys processor, dir string, workers int, logger *slog.Logger) (summary, error) {
	names, err := pdfFiles(dir)
	if err != nil {
		return summary{}, err
	}

	sum := summary{Total: len(names), ByStatus: make(map[invoices.Status]int)}
	if len(names) == 0 {
		logger.Warn("no pdf files found", "dir", dir)
		return sum, nil
	}

	logger.Info("batch started", "dir", dir, "files", len(names), "workers", workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := sys.Process(gctx, filepath.Join(dir, name), name)

			mu.Lock()
			sum.ByStatus[res.Status]++
			if res.Success {
				sum.Succeeded++
			}
			mu.Unlock()

			attrs := []any{
				"pdf_name", name,
				"index", fmt.Sprintf("%d/%d", i+1, len(names)),
				"status", res.Status,
				"seconds", fmt.Sprintf("%.2f", res.Seconds),
			}
			if res.Success {
				logger.Info("SUCCESS", attrs...)
			} else {
				logger.Error("FAILED", append(attrs, "error", res.Error)...)
			}
			return nil
		})
	}

	err = g.Wait()

	logger.Info("batch complete",
		"succeeded", sum.Succeeded,
		"failed", sum.Failed(),
		"total", sum.Total,
	)
	return sum, err
}
