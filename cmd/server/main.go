// @title           Neptune AI API
// @version         1.0
// @description     Chat generation over native and ONNX model backends.
// @host            localhost:8000
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"neptune-ai/backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := 0
	cmd := &cli.Command{
		Name:  "neptune",
		Usage: "chat generation server",
		Action: func(ctx context.Context, c *cli.Command) error {
			code = app.Run(ctx)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP server (default)",
				Action: func(ctx context.Context, c *cli.Command) error {
					code = app.Run(ctx)
					return nil
				},
			},
			{
				Name:  "migrate",
				Usage: "apply database migrations and exit",
				Action: func(ctx context.Context, c *cli.Command) error {
					code = app.Migrate()
					return nil
				},
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		code = 1
	}
	stop()
	os.Exit(code)
}
