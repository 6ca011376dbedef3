// Package clipboard copies rendered output to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is available on this system.
var ErrUnavailable = errors.New("clipboard is not available on this system")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	write       func(string) error
	unsupported bool
}

// NewService constructs a Service backed by the system clipboard.
func NewService() *Service {
	return &Service{write: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if service.unsupported {
		return ErrUnavailable
	}
	return service.write(text)
}

var _ Copier = (*Service)(nil)
