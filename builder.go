package walktree

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/walktree/internal/traversal"
)

const (
	emptyRootProblem         = "root path must not be empty"
	missingMapperProblem     = "a mapper must be supplied with WithMap"
	missingFilterProblem     = "WithFilter requires a non-nil predicate"
	missingProviderProblem   = "WithProvider requires a non-nil provider"
	unknownErrorPolicyFormat = "unknown error policy %s"
	alreadyWalkedProblem     = "builder has already been walked"
	resolveRootErrorFormat   = "walktree: resolve root %s: %w"
	walkStartedMessage       = "walk started"
	walkFinishedMessage      = "walk finished"
	walkFailedMessage        = "walk failed"
	rootLogField             = "root"
	nodesLogField            = "nodes"
	failuresLogField         = "failures"
	policyLogField           = "error_policy"
)

// Builder configures the construction of a Tree. It is used once: Walk consumes it.
type Builder[T any] struct {
	rootPath    string
	filter      func(*Entry) bool
	mapper      func(*Entry) T
	options     []Option
	provider    Provider
	filesystem  afero.Fs
	errorPolicy ErrorPolicy
	logger      *zap.Logger
	nilFilter   bool
	nilProvider bool
	walked      bool
}

// Load begins configuring a tree rooted at rootPath. It performs no I/O.
func Load[T any](rootPath string) *Builder[T] {
	return &Builder[T]{rootPath: rootPath, errorPolicy: CollectErrors}
}

// WithFilter sets the prune predicate, replacing any previous one. Rejecting a
// directory prevents descent into it; rejecting a file removes only that entry.
func (builder *Builder[T]) WithFilter(filter func(*Entry) bool) *Builder[T] {
	builder.filter = filter
	builder.nilFilter = filter == nil
	return builder
}

// WithMap sets the function producing the data stored for each entry.
func (builder *Builder[T]) WithMap(mapper func(*Entry) T) *Builder[T] {
	builder.mapper = mapper
	return builder
}

// WithTraversalOption appends one traversal option.
func (builder *Builder[T]) WithTraversalOption(option Option) *Builder[T] {
	builder.options = append(builder.options, option)
	return builder
}

// WithTraversalOptions appends several traversal options in order.
func (builder *Builder[T]) WithTraversalOptions(options ...Option) *Builder[T] {
	builder.options = append(builder.options, options...)
	return builder
}

// WithProvider replaces the default filesystem provider.
func (builder *Builder[T]) WithProvider(provider Provider) *Builder[T] {
	builder.provider = provider
	builder.nilProvider = provider == nil
	return builder
}

// WithFileSystem runs the default provider over filesystem instead of the OS filesystem.
func (builder *Builder[T]) WithFileSystem(filesystem afero.Fs) *Builder[T] {
	builder.filesystem = filesystem
	return builder
}

// WithErrorPolicy selects how traversal failures are handled. The default is CollectErrors.
func (builder *Builder[T]) WithErrorPolicy(policy ErrorPolicy) *Builder[T] {
	builder.errorPolicy = policy
	return builder
}

// WithLogger sets the logger receiving walk diagnostics.
func (builder *Builder[T]) WithLogger(logger *zap.Logger) *Builder[T] {
	builder.logger = logger
	return builder
}

// Walk validates the configuration, traverses the root and assembles the tree.
// A nil tree is returned whenever the error is non-nil.
func (builder *Builder[T]) Walk(ctx context.Context) (*Tree[T], error) {
	if builder.walked {
		return nil, &ConfigurationError{Problems: []string{alreadyWalkedProblem}}
	}
	builder.walked = true
	if ctx == nil {
		ctx = context.Background()
	}

	policy, validationError := builder.validate()
	if validationError != nil {
		return nil, validationError
	}

	absoluteRoot, absoluteRootError := filepath.Abs(builder.rootPath)
	if absoluteRootError != nil {
		return nil, fmt.Errorf(resolveRootErrorFormat, builder.rootPath, absoluteRootError)
	}

	logger := builder.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := builder.provider
	if provider == nil {
		provider = traversal.NewFileSystem(builder.filesystem)
	}

	logger.Debug(walkStartedMessage, zap.String(rootLogField, absoluteRoot), zap.Stringer(policyLogField, builder.errorPolicy))
	pipeline := entryPipeline[T]{
		provider:    provider,
		policy:      policy,
		mapper:      builder.mapper,
		errorPolicy: builder.errorPolicy,
		logger:      logger,
	}
	records, failures, pipelineError := pipeline.run(ctx, absoluteRoot)
	if pipelineError != nil {
		logger.Debug(walkFailedMessage, zap.String(rootLogField, absoluteRoot), zap.Error(pipelineError))
		return nil, pipelineError
	}

	tree, assembleError := assemble(absoluteRoot, records, failures)
	if assembleError != nil {
		logger.Debug(walkFailedMessage, zap.String(rootLogField, absoluteRoot), zap.Error(assembleError))
		return nil, assembleError
	}
	logger.Debug(walkFinishedMessage,
		zap.String(rootLogField, absoluteRoot),
		zap.Int(nodesLogField, tree.Len()),
		zap.Int(failuresLogField, len(failures)),
	)
	return tree, nil
}

// validate reports every configuration problem at once.
func (builder *Builder[T]) validate() (Policy, error) {
	var problems []string
	if builder.nilFilter {
		problems = append(problems, missingFilterProblem)
	}
	if builder.nilProvider {
		problems = append(problems, missingProviderProblem)
	}
	if builder.rootPath == "" {
		problems = append(problems, emptyRootProblem)
	}
	if builder.mapper == nil {
		problems = append(problems, missingMapperProblem)
	}
	if builder.errorPolicy != CollectErrors && builder.errorPolicy != AbortOnError {
		problems = append(problems, fmt.Sprintf(unknownErrorPolicyFormat, builder.errorPolicy))
	}
	policy, optionProblems := compilePolicy(builder.options)
	problems = append(problems, optionProblems...)
	if len(problems) > 0 {
		return Policy{}, &ConfigurationError{Problems: problems}
	}
	policy.Filter = builder.filter
	return policy, nil
}
