package observability

import (
	"fmt"

	"go.uber.org/zap"
)

// Flush drains buffered telemetry before process exit. Prometheus metrics
// are scraped rather than pushed, so logs are the only output that needs an
// explicit flush. Call after in-flight requests have drained.
func Flush(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	if err := logger.Sync(); err != nil {
		return fmt.Errorf("flush logs: %w", err)
	}
	return nil
}
