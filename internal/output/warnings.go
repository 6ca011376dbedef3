package output

import (
	"fmt"
	"io"

	"github.com/temirov/walktree"
)

const warningLineFormat = "Warning: %s: %v\n"

// WriteWarnings prints each traversal failure on its own line.
func WriteWarnings(writer io.Writer, failures []*walktree.TraversalError) {
	for _, failure := range failures {
		fmt.Fprintf(writer, warningLineFormat, failure.Path, failure.Err)
	}
}
