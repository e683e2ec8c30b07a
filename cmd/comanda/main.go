package main

import (
	"os"

	"comanda/internal/cache"
	"comanda/internal/cli"
	apphttp "comanda/internal/http"
	applog "comanda/internal/log"
	"comanda/internal/search"
	"comanda/internal/store/memory"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)
	logger.WithComponent(applog.ComponentConfig).Info("Configuration loaded",
		"port", cfg.Port, "data_dir", cfg.DataDir, "log_level", cfg.LogLevel, "search_cache_size", cfg.SearchCacheSize)

	st := memory.NewFromFiles(cfg.DataDir)
	logger.WithComponent(applog.ComponentStorage).Info("Initialized memory store", "data_dir", cfg.DataDir)

	searchCache := cache.NewLRUCache[search.Result](cfg.SearchCacheSize, cfg.SearchCacheTTL)
	srv := apphttp.NewServer(cfg.Addr(), st, logger, searchCache)
	janitor := cache.NewJanitor(cfg.SearchCacheTTL, srv.Cleaners()...)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	logger.Info("Starting comanda server", "port", cfg.Port, applog.FieldOperation, applog.OpStartup)
	if err := cli.Serve(ctx, logger, srv, cfg.ShutdownTimeout, janitor.Run); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
}
