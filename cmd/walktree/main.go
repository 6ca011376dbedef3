package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/temirov/walktree/internal/cli"
	"github.com/temirov/walktree/internal/utils"
)

// main is the entry point for the walktree command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(false)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if applicationExecutionError := cli.Execute(ctx); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
