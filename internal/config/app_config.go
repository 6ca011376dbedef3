// Package config loads walktree configuration files and ignore files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/temirov/walktree/internal/utils"
)

const (
	workingDirectoryErrorFormat  = "determine working directory: %w"
	resolveConfigPathErrorFormat = "resolve configuration path %s: %w"
	statConfigErrorFormat        = "stat configuration %s: %w"
	configIsDirectoryErrorFormat = "configuration path %s is a directory"
	readConfigErrorFormat        = "read configuration from %s: %w"
	decodeConfigErrorFormat      = "decode configuration from %s: %w"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// HomeDirectory overrides the user's home directory when looking for the global file.
	HomeDirectory string
	// Filesystem defaults to the OS filesystem.
	Filesystem afero.Fs
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Tree TreeConfiguration `mapstructure:"tree" yaml:"tree"`
}

// TreeConfiguration defines defaults for the tree command. Nil pointers mean "not configured".
type TreeConfiguration struct {
	Format         string             `mapstructure:"format" yaml:"format,omitempty"`
	Summary        *bool              `mapstructure:"summary" yaml:"summary,omitempty"`
	Sort           string             `mapstructure:"sort" yaml:"sort,omitempty"`
	ContentsFirst  *bool              `mapstructure:"contents_first" yaml:"contents_first,omitempty"`
	FollowLinks    *bool              `mapstructure:"follow_links" yaml:"follow_links,omitempty"`
	SameFileSystem *bool              `mapstructure:"same_file_system" yaml:"same_file_system,omitempty"`
	MinDepth       *int               `mapstructure:"min_depth" yaml:"min_depth,omitempty"`
	MaxDepth       *int               `mapstructure:"max_depth" yaml:"max_depth,omitempty"`
	MaxOpen        *int               `mapstructure:"max_open" yaml:"max_open,omitempty"`
	FailFast       *bool              `mapstructure:"fail_fast" yaml:"fail_fast,omitempty"`
	Clipboard      *bool              `mapstructure:"clipboard" yaml:"clipboard,omitempty"`
	Tokens         TokenConfiguration `mapstructure:"tokens" yaml:"tokens"`
	Paths          PathConfiguration  `mapstructure:"paths" yaml:"paths"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Model   string `mapstructure:"model" yaml:"model,omitempty"`
}

// PathConfiguration configures inclusion and exclusion rules for path traversal.
type PathConfiguration struct {
	Exclude       []string `mapstructure:"exclude" yaml:"exclude"`
	UseGitignore  *bool    `mapstructure:"use_gitignore" yaml:"use_gitignore,omitempty"`
	UseIgnoreFile *bool    `mapstructure:"use_ignore" yaml:"use_ignore,omitempty"`
	IncludeGit    *bool    `mapstructure:"include_git" yaml:"include_git,omitempty"`
}

// LoadApplicationConfiguration loads the global file and then the local or
// explicit file; values set in the later file win field by field.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	filesystem := options.Filesystem
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(workingDirectoryErrorFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if userHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = userHome
		}
	}
	if homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(filesystem, globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	localConfig, loadErr := loadConfigurationFromPath(filesystem, localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Tree.Paths.Exclude = utils.DeduplicatePatterns(merged.Tree.Paths.Exclude)
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath, nil
	}
	if workingDirectory == "" {
		absolute, err := filepath.Abs(explicitPath)
		if err != nil {
			return "", fmt.Errorf(resolveConfigPathErrorFormat, explicitPath, err)
		}
		return absolute, nil
	}
	return filepath.Join(workingDirectory, explicitPath), nil
}

func loadConfigurationFromPath(filesystem afero.Fs, path string) (ApplicationConfiguration, error) {
	info, statErr := filesystem.Stat(path)
	if statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(statConfigErrorFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(configIsDirectoryErrorFormat, path)
	}

	reader := viper.New()
	reader.SetFs(filesystem)
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(readConfigErrorFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(decodeConfigErrorFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Tree = result.Tree.merge(override.Tree)
	return result
}

func (config TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Sort != "" {
		result.Sort = override.Sort
	}
	result.Summary = overrideValue(result.Summary, override.Summary)
	result.ContentsFirst = overrideValue(result.ContentsFirst, override.ContentsFirst)
	result.FollowLinks = overrideValue(result.FollowLinks, override.FollowLinks)
	result.SameFileSystem = overrideValue(result.SameFileSystem, override.SameFileSystem)
	result.MinDepth = overrideValue(result.MinDepth, override.MinDepth)
	result.MaxDepth = overrideValue(result.MaxDepth, override.MaxDepth)
	result.MaxOpen = overrideValue(result.MaxOpen, override.MaxOpen)
	result.FailFast = overrideValue(result.FailFast, override.FailFast)
	result.Clipboard = overrideValue(result.Clipboard, override.Clipboard)
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Paths = result.Paths.merge(override.Paths)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	result.Enabled = overrideValue(result.Enabled, override.Enabled)
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	result.UseGitignore = overrideValue(result.UseGitignore, override.UseGitignore)
	result.UseIgnoreFile = overrideValue(result.UseIgnoreFile, override.UseIgnoreFile)
	result.IncludeGit = overrideValue(result.IncludeGit, override.IncludeGit)
	return result
}

// overrideValue returns a copy of override when it is set and current otherwise.
func overrideValue[V any](current *V, override *V) *V {
	if override == nil {
		return current
	}
	cloned := *override
	return &cloned
}
