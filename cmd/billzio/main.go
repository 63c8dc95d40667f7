package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/billzio/billzio/config"
	"github.com/billzio/billzio/internal/adminapi"
	"github.com/billzio/billzio/internal/app"
	"github.com/billzio/billzio/internal/webserver"
)

var (
	cfile    = flag.String("c", "/etc/billzio.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showVer  = flag.Bool("v", false, "print version and exit")
	version  = "dev"
	buildAt  = "unknown"
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("billzio %s (built %s)\n", version, buildAt)
		return
	}

	cfg := config.LoadConfig(*cfile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application.StartBackgroundJobs(ctx)

	ws := webserver.Init(application)
	adminapi.RegisterRoutes()

	errCh := make(chan error, 1)
	go func() {
		errCh <- ws.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zap.S().Errorf("web server stopped: %v", err)
		}
	case sig := <-sigCh:
		zap.S().Infof("received signal %s, shutting down", sig)
		cancel()
		if err := ws.Shutdown(10 * time.Second); err != nil {
			zap.S().Errorf("shutdown error: %v", err)
		}
	}
}
