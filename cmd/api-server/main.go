// Command api-server serves customer registration, quotes and orders over
// HTTP.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	petro "github.com/xenking/petrobahia/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := petro.LoadConfig()
		if err != nil {
			return errors.Wrap(err, "config")
		}
		return petro.Run(ctx, lg, m, cfg)
	})
}
