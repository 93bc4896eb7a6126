package main

import (
	"context"
	"devmcp/app/config"
	"devmcp/app/server"
	"devmcp/app/util/mylog"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load(resolveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	server.Provide(di)
	do.Provide(di, server.New)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	slog.Info("Service started")

	if err = do.MustInvoke[*server.Service](di).Run(appCtx); err != nil {
		slog.Error("Server stopped with error", slog.Any("error", err))
	}
}

func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("DEVMCP_CONFIG"); env != "" {
		return env
	}
	return config.DefaultPath
}
