package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/toolforge/jobs-emailer/emailer"
	"github.com/toolforge/jobs-emailer/k8s"
	"github.com/toolforge/jobs-emailer/model"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	level := zerolog.DebugLevel
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		if parsed, err := zerolog.ParseLevel(l); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:    model.AppName,
		Usage:   "email notifications about Toolforge job pod events",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Start the emailer daemon",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kubeconfig",
						Usage: "path to a kubeconfig file (default: in-cluster config)",
					},
				},
				Action: run,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("emailer failed")
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	log.Info().Str("version", version).Str("commit", commit).Msg("emailer starting!")

	cfg, err := env.ParseAs[model.Config]()
	if err != nil {
		return err
	}
	if kc := cmd.String("kubeconfig"); kc != "" {
		cfg.Kubeconfig = kc
	}

	client, err := k8s.NewClientset(cfg.Kubeconfig)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e := emailer.New(cfg, client, version, commit)
	e.Start(ctx)

	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}
