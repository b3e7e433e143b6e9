package main

import (
	"context"
	"log/slog"

	"propfirm-backend/cmd/propscrape/commands"
	"propfirm-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()

	telemetry.InitSlog(true)
	tel, err := telemetry.SetupFromEnv(ctx, "propscrape")
	if err != nil {
		slog.Warn("trace export disabled", "err", err)
	}
	defer tel.Shutdown(ctx)

	commands.ExecuteContext(ctx)
}
