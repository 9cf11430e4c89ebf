package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/invoicer/internal/config"
	"github.com/JaimeStill/invoicer/internal/infrastructure"
	"github.com/JaimeStill/invoicer/internal/invoices"
)

func main() {
	var (
		configPath = flag.String("config", config.BaseConfigFile, "Base config file")
		dir        = flag.String("dir", "invoices", "Folder of PDF invoices to process")
		workers    = flag.Int("workers", 0, "Concurrent documents (defaults to pipeline.workers)")
	)
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatal("config load failed: ", err)
	}
	if *workers < 1 {
		*workers = cfg.Pipeline.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		log.Fatal("infrastructure init failed: ", err)
	}
	if err := infra.Start(); err != nil {
		log.Fatal("infrastructure start failed: ", err)
	}
	infra.Lifecycle.WaitForStartup()

	logger := infra.Logger.With("module", "batch")
	sys := invoices.FromInfrastructure(infra, &cfg.Pipeline, cfg.API.Pagination, logger)

	sum, runErr := runBatch(ctx, sys, *dir, *workers, logger)

	if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	if runErr != nil {
		log.Fatal("batch interrupted: ", runErr)
	}
	if sum.Failed() > 0 {
		os.Exit(1)
	}
}
