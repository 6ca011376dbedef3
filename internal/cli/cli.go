// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/walktree/internal/services/clipboard"
	"github.com/temirov/walktree/internal/tokenizer"
	"github.com/temirov/walktree/internal/utils"
)

const (
	configFlagName         = "config"
	verboseFlagName        = "verbose"
	versionTemplate        = "walktree version: {{.Version}}\n"
	rootUse                = "walktree"
	rootShortDescription   = "walktree command line interface"
	rootLongDescription    = `walktree walks directory hierarchies into indexed trees and renders them.
Use the tree command to render one or more paths as raw, json, or xml output,
init to write a default configuration file, and --version to print the application version.`
	configFlagDescription  = "path to a configuration file used instead of ./config.yaml"
	verboseFlagDescription = "log walk diagnostics"
	loggerErrorFormat      = "create logger: %w"
)

// application carries the collaborators shared by every command.
type application struct {
	filesystem       afero.Fs
	stdout           io.Writer
	stderr           io.Writer
	copier           clipboard.Copier
	logger           *zap.Logger
	workingDirectory string
	homeDirectory    string
	newCounter       func(model string) (tokenizer.Counter, string, error)
	configPath       string
	verbose          bool
}

// Execute runs the walktree application with the process arguments.
func Execute(ctx context.Context) error {
	app := &application{
		filesystem: afero.NewOsFs(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		copier:     clipboard.NewService(),
		newCounter: tokenizer.NewCounter,
	}
	rootCommand := app.newRootCommand()
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// newRootCommand builds the root Cobra command.
func (app *application) newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return app.prepareLogger()
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.SetOut(app.stdout)
	rootCommand.SetErr(app.stderr)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &app.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.AddCommand(
		app.newTreeCommand(),
		app.newInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// prepareLogger creates the console logger unless one was injected.
func (app *application) prepareLogger() error {
	if app.logger != nil {
		return nil
	}
	logger, loggerError := utils.NewApplicationLogger(app.verbose)
	if loggerError != nil {
		return fmt.Errorf(loggerErrorFormat, loggerError)
	}
	app.logger = logger
	return nil
}
