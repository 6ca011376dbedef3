package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/walktree/internal/config"
	"github.com/temirov/walktree/internal/types"
)

const (
	globalFlagName        = "global"
	forceFlagName         = "force"
	initUse               = types.CommandInit
	initShortDescription  = "write a default configuration file"
	initLongDescription   = `Write the default configuration to ./config.yaml, or to ~/.walktree/config.yaml with --global.
An existing file is kept unless --force is set.`
	globalFlagDescription = "write the global configuration file"
	forceFlagDescription  = "overwrite an existing configuration file"
	initSuccessFormat     = "Configuration written to %s\n"
)

// newInitCommand returns the init subcommand.
func (app *application) newInitCommand() *cobra.Command {
	var writeGlobal bool
	var overwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            overwrite,
				WorkingDirectory: app.workingDirectory,
				HomeDirectory:    app.homeDirectory,
				Filesystem:       app.filesystem,
			})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(command.OutOrStdout(), initSuccessFormat, writtenPath)
			return printError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &writeGlobal, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &overwrite, forceFlagName, false, forceFlagDescription)
	return initCommand
}
