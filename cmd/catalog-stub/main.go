// cmd/catalog-stub/main.go
//
// Serves the catalog REST API from memory so the back office can run without
// the real admin backend. Settings come from the stub section of
// backoffice.yaml and BACKOFFICE_STUB_* variables.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kingrea/backoffice/internal/config"
	"github.com/kingrea/backoffice/internal/stubapi"
)

func main() {
	projectDir := flag.String("project", ".", "directory holding backoffice.yaml")
	port := flag.Int("port", 0, "listen port (overrides stub.port)")
	empty := flag.Bool("empty", false, "start without sample data")
	flag.Parse()

	cfg, err := config.Load(*projectDir)
	if err != nil {
		die("load config: %v", err)
	}
	settings := stubapi.SettingsFromConfig(cfg)
	if *port > 0 {
		settings.Port = *port
	}
	if *empty {
		settings.Seed = false
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		die("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := stubapi.NewServer(settings, stubapi.WithLogger(logger))
	if err := srv.Start(ctx); err != nil {
		die("%v", err)
	}
	logger.Info("catalog stub ready", zap.String("url", srv.BaseURL()), zap.Bool("seeded", settings.Seed))

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "catalog-stub: "+format+"\n", args...)
	os.Exit(1)
}
