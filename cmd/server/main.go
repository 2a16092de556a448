package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/yurifrl/csv2qif/pkg/config"
	"github.com/yurifrl/csv2qif/pkg/server"
	"github.com/yurifrl/csv2qif/pkg/service"
)

func main() {
	flags := pflag.NewFlagSet("csv2qif-server", pflag.ExitOnError)
	flags.StringP("config", "c", "config.yaml", "Rules document (YAML or JSON)")
	flags.String("addr", ":8080", "Listen address")
	flags.String("log-level", "info", "Log level")
	flags.IntP("workers", "w", 0, "Worker pool size")
	dedupe := flags.Bool("dedupe", false, "Drop repeated transactions")
	_ = flags.Parse(os.Args[1:])

	settings, err := config.Build(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := settings.NewLogger("csv2qif")

	cfg, err := config.Load(settings.Config)
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}

	processor := service.NewProcessor(cfg, logger, service.Options{Workers: settings.Workers, Dedupe: *dedupe})
	srv := server.New(cfg, processor, logger)
	logger.Info("starting server", "addr", settings.Addr, "formats", len(cfg.Formats))
	if err := srv.Start(settings.Addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
