package tokenizer

import (
	"errors"

	"github.com/spf13/afero"

	"github.com/temirov/walktree/internal/utils"
)

const nilCounterErrorMessage = "nil tokenizer counter"

// CountResult captures the outcome of counting a file or byte slice.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for data. Binary data is not counted.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errors.New(nilCounterErrorMessage)
	}
	if utils.IsBinary(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, countError := counter.CountString(string(data))
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// CountFile reads path from filesystem and estimates its token count.
func CountFile(counter Counter, filesystem afero.Fs, path string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errors.New(nilCounterErrorMessage)
	}
	data, readError := afero.ReadFile(filesystem, path)
	if readError != nil {
		return CountResult{}, readError
	}
	return CountBytes(counter, data)
}
