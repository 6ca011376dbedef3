package walktree

import (
	"context"

	"go.uber.org/zap"
)

const (
	traversalFailureMessage = "traversal failure collected"
	pathLogField            = "path"
	depthLogField           = "depth"
)

// record is one mapped entry. Its sequence position is its index in the record list.
type record[T any] struct {
	path string
	data T
}

// entryPipeline maps each entry the provider produces as soon as it is produced,
// on the goroutine calling Walk.
type entryPipeline[T any] struct {
	provider    Provider
	policy      Policy
	mapper      func(*Entry) T
	errorPolicy ErrorPolicy
	logger      *zap.Logger
}

func (pipeline entryPipeline[T]) run(ctx context.Context, root string) ([]record[T], []*TraversalError, error) {
	var records []record[T]
	var failures []*TraversalError
	walkError := pipeline.provider.Walk(ctx, root, pipeline.policy, func(entry Entry, err error) error {
		if err != nil {
			return pipeline.handleFailure(&failures, entry, err)
		}
		if contextError := ctx.Err(); contextError != nil {
			return contextError
		}
		records = append(records, record[T]{path: entry.Path, data: pipeline.mapper(&entry)})
		return nil
	})
	if walkError != nil {
		return nil, nil, walkError
	}
	if contextError := ctx.Err(); contextError != nil {
		return nil, nil, contextError
	}
	return records, failures, nil
}

func (pipeline entryPipeline[T]) handleFailure(failures *[]*TraversalError, entry Entry, cause error) error {
	failure := &TraversalError{Path: entry.Path, Depth: entry.Depth, Err: cause}
	if pipeline.errorPolicy == AbortOnError {
		return failure
	}
	pipeline.logger.Warn(traversalFailureMessage,
		zap.String(pathLogField, entry.Path),
		zap.Int(depthLogField, entry.Depth),
		zap.Error(cause),
	)
	*failures = append(*failures, failure)
	return nil
}
