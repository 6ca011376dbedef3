package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/temirov/walktree/internal/types"
	"github.com/temirov/walktree/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget  = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultTokenModel = "gpt-4o"
	defaultMaxOpen    = 10

	initWorkingDirectoryErrorFormat = "determine working directory for configuration: %w"
	initHomeDirectoryErrorFormat    = "resolve home directory for configuration: %w"
	initCreateDirectoryErrorFormat  = "create configuration directory %s: %w"
	initUnsupportedTargetFormat     = "unsupported init target %q"
	initExistsErrorFormat           = "configuration file already exists at %s"
	initInspectErrorFormat          = "inspect configuration path %s: %w"
	initEncodeErrorFormat           = "encode default configuration: %w"
	initWriteErrorFormat            = "write configuration to %s: %w"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
	HomeDirectory    string
	Filesystem       afero.Fs
}

// DefaultConfiguration returns the configuration written by InitializeConfiguration.
func DefaultConfiguration() ApplicationConfiguration {
	enabled := true
	disabled := false
	maxOpen := defaultMaxOpen
	return ApplicationConfiguration{
		Tree: TreeConfiguration{
			Format:         types.FormatJSON,
			Summary:        &enabled,
			Sort:           types.SortByName,
			ContentsFirst:  &disabled,
			FollowLinks:    &disabled,
			SameFileSystem: &disabled,
			MaxOpen:        &maxOpen,
			FailFast:       &disabled,
			Clipboard:      &disabled,
			Tokens: TokenConfiguration{
				Enabled: &disabled,
				Model:   defaultTokenModel,
			},
			Paths: PathConfiguration{
				Exclude:       []string{},
				UseGitignore:  &enabled,
				UseIgnoreFile: &enabled,
				IncludeGit:    &disabled,
			},
		},
	}
}

// InitializeConfiguration writes the default configuration to the requested target
// and returns the path written.
func InitializeConfiguration(options InitOptions) (string, error) {
	filesystem := options.Filesystem
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}

	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf(initWorkingDirectoryErrorFormat, err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory := options.HomeDirectory
		if homeDirectory == "" {
			userHome, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf(initHomeDirectoryErrorFormat, err)
			}
			homeDirectory = userHome
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := filesystem.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf(initCreateDirectoryErrorFormat, configurationDirectory, err)
		}
		destinationPath = filepath.Join(configurationDirectory, utils.ConfigFileName)
	default:
		return "", fmt.Errorf(initUnsupportedTargetFormat, target)
	}

	if _, err := filesystem.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf(initExistsErrorFormat, destinationPath)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf(initInspectErrorFormat, destinationPath, err)
	}

	encoded, encodeError := yaml.Marshal(DefaultConfiguration())
	if encodeError != nil {
		return "", fmt.Errorf(initEncodeErrorFormat, encodeError)
	}
	if err := afero.WriteFile(filesystem, destinationPath, encoded, 0o600); err != nil {
		return "", fmt.Errorf(initWriteErrorFormat, destinationPath, err)
	}
	return destinationPath, nil
}
