// logger.go

package fakenews

import (
	"github.com/baditaflorin/go_fakenews/internal/adapters/logger"
	"github.com/baditaflorin/go_fakenews/internal/ports"
)

// createDefaultLogger creates the logger used when none is configured.
// Library output goes to stderr so it never mixes with rendered results.
func createDefaultLogger() (ports.Logger, error) {
	return logger.NewStdLogger()
}
