// The wkioskctl command provides a command-line interface for managing
// Wrale Kiosk widgets and announcements and inspecting display clients.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/wrale/wrale-kiosk/internal/wkioskctl/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.Execute(ctx)
}
