package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/walktree"
	"github.com/temirov/walktree/internal/commands"
	"github.com/temirov/walktree/internal/config"
	"github.com/temirov/walktree/internal/output"
	"github.com/temirov/walktree/internal/tokenizer"
	"github.com/temirov/walktree/internal/types"
)

const (
	exclusionFlagName      = "e"
	noGitignoreFlagName    = "no-gitignore"
	noIgnoreFlagName       = "no-ignore"
	includeGitFlagName     = "git"
	formatFlagName         = "format"
	summaryFlagName        = "summary"
	sortFlagName           = "sort"
	contentsFirstFlagName  = "contents-first"
	followLinksFlagName    = "follow-links"
	sameFileSystemFlagName = "same-file-system"
	minDepthFlagName       = "min-depth"
	maxDepthFlagName       = "max-depth"
	maxOpenFlagName        = "max-open"
	failFastFlagName       = "fail-fast"
	tokensFlagName         = "tokens"
	modelFlagName          = "model"
	clipboardFlagName      = "clipboard"
	defaultPath            = "."
	concurrentRootLimit    = 4

	treeUse              = types.CommandTree + " [paths...]"
	treeAlias            = "t"
	treeShortDescription = "display directory tree (" + treeAlias + ")"
	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `Walk one or more paths and render each as a tree.
Use --format to select raw, json, or xml output. Unreadable entries are reported
as warnings unless --fail-fast is set, in which case the first one stops the command.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Render the tree in XML format
  walktree tree --format xml ./cmd

  # Two levels deep, largest files last, without the vendor directory
  walktree tree --max-depth 2 --sort size -e vendor .`

	exclusionFlagDescription      = "exclude path pattern"
	disableGitignoreDescription   = "do not use .gitignore"
	disableIgnoreDescription      = "do not use .ignore"
	includeGitDescription         = "include git directory"
	formatFlagDescription         = "output format (raw, json, xml)"
	summaryFlagDescription        = "include summary of resulting files"
	sortFlagDescription           = "sibling order (name, size, modified, none)"
	contentsFirstFlagDescription  = "produce directory contents before the directory"
	followLinksFlagDescription    = "follow symbolic links"
	sameFileSystemFlagDescription = "do not cross file system boundaries"
	minDepthFlagDescription       = "omit entries shallower than this depth"
	maxDepthFlagDescription       = "do not descend below this depth"
	maxOpenFlagDescription        = "maximum number of directory handles held open"
	failFastFlagDescription       = "stop at the first unreadable entry"
	tokensFlagDescription         = "include token counts"
	modelFlagDescription          = "tokenizer model to use for token counting"
	clipboardFlagDescription      = "copy the rendered output to the clipboard"

	invalidFormatMessage         = "invalid format value '%s'"
	errorAbsolutePathFormat      = "abs failed for '%s': %w"
	errorPathMissingFormat       = "path '%s' does not exist"
	errorStatFormat              = "stat failed for '%s': %w"
	errorLoadConfigurationFormat = "load configuration: %w"
	errorTokenCounterFormat      = "create token counter for %s: %w"
	errorIgnorePatternsFormat    = "load ignore patterns for %s: %w"
	errorBuildTreeFormat         = "building tree for %s: %w"
	errorWriteOutputFormat       = "write output: %w"
	errorClipboardFormat         = "copy output to clipboard: %w"
)

// treeFlags receives the tree command's flag values.
type treeFlags struct {
	format         string
	summary        bool
	sort           string
	contentsFirst  bool
	followLinks    bool
	sameFileSystem bool
	minDepth       int
	maxDepth       int
	maxOpen        int
	failFast       bool
	exclusions     []string
	noGitignore    bool
	noIgnore       bool
	includeGit     bool
	tokens         bool
	model          string
	clipboard      bool
}

// treeSettings is the effective tree configuration after defaults, configuration files, and flags.
type treeSettings struct {
	format         string
	summary        bool
	sort           string
	contentsFirst  bool
	followLinks    bool
	sameFileSystem bool
	minDepth       int
	maxDepth       *int
	maxOpen        int
	failFast       bool
	exclusions     []string
	useGitignore   bool
	useIgnoreFile  bool
	includeGit     bool
	tokens         bool
	model          string
	clipboard      bool
}

type rootPath struct {
	path        string
	isDirectory bool
}

// newTreeCommand returns the tree subcommand.
func (app *application) newTreeCommand() *cobra.Command {
	var flags treeFlags

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
				WorkingDirectory: app.workingDirectory,
				ExplicitFilePath: app.configPath,
				HomeDirectory:    app.homeDirectory,
				Filesystem:       app.filesystem,
			})
			if configurationError != nil {
				return fmt.Errorf(errorLoadConfigurationFormat, configurationError)
			}
			settings, settingsError := resolveTreeSettings(command.Flags(), flags, configuration.Tree)
			if settingsError != nil {
				return settingsError
			}
			if len(arguments) == 0 {
				arguments = []string{defaultPath}
			}
			return app.runTree(command.Context(), arguments, settings)
		},
	}

	flagSet := treeCommand.Flags()
	flagSet.StringArrayVarP(&flags.exclusions, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerBooleanFlag(flagSet, &flags.noGitignore, noGitignoreFlagName, false, disableGitignoreDescription)
	registerBooleanFlag(flagSet, &flags.noIgnore, noIgnoreFlagName, false, disableIgnoreDescription)
	registerBooleanFlag(flagSet, &flags.includeGit, includeGitFlagName, false, includeGitDescription)
	flagSet.StringVar(&flags.format, formatFlagName, types.FormatJSON, formatFlagDescription)
	registerBooleanFlag(flagSet, &flags.summary, summaryFlagName, true, summaryFlagDescription)
	flagSet.StringVar(&flags.sort, sortFlagName, types.SortByName, sortFlagDescription)
	registerBooleanFlag(flagSet, &flags.contentsFirst, contentsFirstFlagName, false, contentsFirstFlagDescription)
	registerBooleanFlag(flagSet, &flags.followLinks, followLinksFlagName, false, followLinksFlagDescription)
	registerBooleanFlag(flagSet, &flags.sameFileSystem, sameFileSystemFlagName, false, sameFileSystemFlagDescription)
	flagSet.IntVar(&flags.minDepth, minDepthFlagName, 0, minDepthFlagDescription)
	flagSet.IntVar(&flags.maxDepth, maxDepthFlagName, 0, maxDepthFlagDescription)
	flagSet.IntVar(&flags.maxOpen, maxOpenFlagName, 0, maxOpenFlagDescription)
	registerBooleanFlag(flagSet, &flags.failFast, failFastFlagName, false, failFastFlagDescription)
	registerBooleanFlag(flagSet, &flags.tokens, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&flags.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	registerBooleanFlag(flagSet, &flags.clipboard, clipboardFlagName, false, clipboardFlagDescription)
	return treeCommand
}

// resolveTreeSettings layers configuration over the defaults and flags set on the command line over both.
func resolveTreeSettings(flagSet *pflag.FlagSet, flags treeFlags, configuration config.TreeConfiguration) (treeSettings, error) {
	settings := treeSettings{
		format:        types.FormatJSON,
		summary:       true,
		sort:          types.SortByName,
		useGitignore:  true,
		useIgnoreFile: true,
		model:         tokenizer.DefaultModel,
	}

	if configuration.Format != "" {
		settings.format = configuration.Format
	}
	if configuration.Sort != "" {
		settings.sort = configuration.Sort
	}
	if configuration.Tokens.Model != "" {
		settings.model = configuration.Tokens.Model
	}
	applyConfigured(&settings.summary, configuration.Summary)
	applyConfigured(&settings.contentsFirst, configuration.ContentsFirst)
	applyConfigured(&settings.followLinks, configuration.FollowLinks)
	applyConfigured(&settings.sameFileSystem, configuration.SameFileSystem)
	applyConfigured(&settings.minDepth, configuration.MinDepth)
	applyConfigured(&settings.maxOpen, configuration.MaxOpen)
	applyConfigured(&settings.failFast, configuration.FailFast)
	applyConfigured(&settings.clipboard, configuration.Clipboard)
	applyConfigured(&settings.tokens, configuration.Tokens.Enabled)
	applyConfigured(&settings.useGitignore, configuration.Paths.UseGitignore)
	applyConfigured(&settings.useIgnoreFile, configuration.Paths.UseIgnoreFile)
	applyConfigured(&settings.includeGit, configuration.Paths.IncludeGit)
	if configuration.MaxDepth != nil {
		configuredDepth := *configuration.MaxDepth
		settings.maxDepth = &configuredDepth
	}
	settings.exclusions = append(settings.exclusions, configuration.Paths.Exclude...)

	applyChanged(flagSet, formatFlagName, &settings.format, flags.format)
	applyChanged(flagSet, summaryFlagName, &settings.summary, flags.summary)
	applyChanged(flagSet, sortFlagName, &settings.sort, flags.sort)
	applyChanged(flagSet, contentsFirstFlagName, &settings.contentsFirst, flags.contentsFirst)
	applyChanged(flagSet, followLinksFlagName, &settings.followLinks, flags.followLinks)
	applyChanged(flagSet, sameFileSystemFlagName, &settings.sameFileSystem, flags.sameFileSystem)
	applyChanged(flagSet, minDepthFlagName, &settings.minDepth, flags.minDepth)
	applyChanged(flagSet, maxOpenFlagName, &settings.maxOpen, flags.maxOpen)
	applyChanged(flagSet, failFastFlagName, &settings.failFast, flags.failFast)
	applyChanged(flagSet, tokensFlagName, &settings.tokens, flags.tokens)
	applyChanged(flagSet, modelFlagName, &settings.model, flags.model)
	applyChanged(flagSet, clipboardFlagName, &settings.clipboard, flags.clipboard)
	applyChanged(flagSet, noGitignoreFlagName, &settings.useGitignore, !flags.noGitignore)
	applyChanged(flagSet, noIgnoreFlagName, &settings.useIgnoreFile, !flags.noIgnore)
	applyChanged(flagSet, includeGitFlagName, &settings.includeGit, flags.includeGit)
	if flagSet.Changed(maxDepthFlagName) {
		requestedDepth := flags.maxDepth
		settings.maxDepth = &requestedDepth
	}
	settings.exclusions = append(settings.exclusions, flags.exclusions...)

	settings.format = strings.ToLower(settings.format)
	switch settings.format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
	default:
		return treeSettings{}, fmt.Errorf(invalidFormatMessage, settings.format)
	}
	settings.sort = strings.ToLower(settings.sort)
	return settings, nil
}

func applyConfigured[V any](target *V, configured *V) {
	if configured != nil {
		*target = *configured
	}
}

func applyChanged[V any](flagSet *pflag.FlagSet, flagName string, target *V, value V) {
	if flagSet.Changed(flagName) {
		*target = value
	}
}

// runTree builds the trees of all roots concurrently, renders them together in
// argument order, and reports collected failures on stderr.
func (app *application) runTree(ctx context.Context, arguments []string, settings treeSettings) error {
	roots, rootsError := app.resolveRoots(arguments)
	if rootsError != nil {
		return rootsError
	}

	var tokenCounter tokenizer.Counter
	var tokenModel string
	if settings.tokens {
		counter, resolvedModel, counterError := app.newCounter(settings.model)
		if counterError != nil {
			return fmt.Errorf(errorTokenCounterFormat, settings.model, counterError)
		}
		tokenCounter = counter
		tokenModel = resolvedModel
	}

	walkLogger := app.logger
	if !app.verbose {
		walkLogger = app.logger.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))
	}

	builtTrees := make([]*walktree.Tree[types.NodeInfo], len(roots))
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(concurrentRootLimit)
	for index, root := range roots {
		group.Go(func() error {
			ignorePatterns, patternsError := app.ignorePatterns(root, settings)
			if patternsError != nil {
				return fmt.Errorf(errorIgnorePatternsFormat, root.path, patternsError)
			}
			treeBuilder := &commands.TreeBuilder{
				Filesystem:     app.filesystem,
				Logger:         app.logger,
				WalkLogger:     walkLogger,
				IgnorePatterns: ignorePatterns,
				TokenCounter:   tokenCounter,
				Sort:           settings.sort,
				ContentsFirst:  settings.contentsFirst,
				FollowLinks:    settings.followLinks,
				SameFileSystem: settings.sameFileSystem,
				MinDepth:       settings.minDepth,
				MaxDepth:       settings.maxDepth,
				MaxOpen:        settings.maxOpen,
				FailFast:       settings.failFast,
			}
			tree, buildError := treeBuilder.Build(groupContext, root.path)
			if buildError != nil {
				return fmt.Errorf(errorBuildTreeFormat, root.path, buildError)
			}
			builtTrees[index] = tree
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return waitError
	}

	var nodes []*types.TreeOutputNode
	var failures []*walktree.TraversalError
	for _, tree := range builtTrees {
		nodes = append(nodes, output.BuildTreeNodes(tree, tokenModel)...)
		failures = append(failures, tree.TraversalErrors()...)
	}

	var summary *types.OutputSummary
	if settings.summary {
		summary = output.ComputeSummary(nodes, tokenModel)
	}
	var rendered bytes.Buffer
	if renderError := output.Render(&rendered, settings.format, nodes, summary); renderError != nil {
		return renderError
	}

	output.WriteWarnings(app.stderr, failures)
	if _, writeError := app.stdout.Write(rendered.Bytes()); writeError != nil {
		return fmt.Errorf(errorWriteOutputFormat, writeError)
	}
	if settings.clipboard {
		if copyError := app.copier.Copy(rendered.String()); copyError != nil {
			return fmt.Errorf(errorClipboardFormat, copyError)
		}
	}
	return nil
}

// resolveRoots converts input paths to absolute form, drops duplicates, and verifies that each exists.
func (app *application) resolveRoots(inputs []string) ([]rootPath, error) {
	seen := make(map[string]struct{})
	var roots []rootPath
	for _, inputPath := range inputs {
		absolutePath := inputPath
		if !filepath.IsAbs(inputPath) {
			if app.workingDirectory != "" {
				absolutePath = filepath.Join(app.workingDirectory, inputPath)
			} else {
				resolvedPath, absolutePathError := filepath.Abs(inputPath)
				if absolutePathError != nil {
					return nil, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
				}
				absolutePath = resolvedPath
			}
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, duplicate := seen[cleanPath]; duplicate {
			continue
		}
		info, statError := app.filesystem.Stat(cleanPath)
		if statError != nil {
			if errors.Is(statError, fs.ErrNotExist) {
				return nil, fmt.Errorf(errorPathMissingFormat, inputPath)
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, statError)
		}
		seen[cleanPath] = struct{}{}
		roots = append(roots, rootPath{path: cleanPath, isDirectory: info.IsDir()})
	}
	return roots, nil
}

// ignorePatterns loads the ignore files below a directory root. A file root is always rendered.
func (app *application) ignorePatterns(root rootPath, settings treeSettings) ([]string, error) {
	if !root.isDirectory {
		return nil, nil
	}
	return config.LoadRecursiveIgnorePatterns(app.filesystem, root.path, config.IgnoreOptions{
		ExclusionPatterns: settings.exclusions,
		UseGitignore:      settings.useGitignore,
		UseIgnoreFile:     settings.useIgnoreFile,
		IncludeGit:        settings.includeGit,
	})
}
