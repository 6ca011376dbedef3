// Package tokenizer estimates token counts of text files with tiktoken encodings.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

const (
	defaultEncodingName         = "cl100k_base"
	fallbackEncodingErrorFormat = "initialize %s tokenizer: %w"
	nilEncoderErrorMessage      = "nil tiktoken encoder"
)

var openAIModelPrefixes = []string{
	"gpt-",
	"o1",
	"o3",
	"text-embedding",
	"davinci",
	"curie",
	"babbage",
	"ada",
	"code-",
}

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// ResolveModel normalizes model and reports whether a model-specific encoding
// should be looked up for it. Other models are counted with cl100k_base.
func ResolveModel(model string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(model))
	if normalized == "" {
		normalized = DefaultModel
	}
	for _, prefix := range openAIModelPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return normalized, true
		}
	}
	return normalized, false
}

// NewCounter returns a Counter for model and the name of the encoding or model it counts with.
func NewCounter(model string) (Counter, string, error) {
	normalized, modelSpecific := ResolveModel(model)
	if modelSpecific {
		encoding, encodingError := tiktoken.EncodingForModel(normalized)
		if encodingError == nil && encoding != nil {
			return encodingCounter{encoding: encoding, name: normalized}, normalized, nil
		}
	}
	encoding, encodingError := tiktoken.GetEncoding(defaultEncodingName)
	if encodingError != nil {
		return nil, "", fmt.Errorf(fallbackEncodingErrorFormat, defaultEncodingName, encodingError)
	}
	return encodingCounter{encoding: encoding, name: defaultEncodingName}, defaultEncodingName, nil
}

type encodingCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter encodingCounter) Name() string {
	return counter.name
}

func (counter encodingCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New(nilEncoderErrorMessage)
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
