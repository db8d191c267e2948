package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand(defaultDeps()).ExecuteContext(ctx)

	stop()

	if err != nil {
		logrus.Errorf("Error: %v", err)
		os.Exit(1)
	}
}
