// Package lifecycle holds shared constants for process start and shutdown.
package lifecycle

import "time"

// DefaultTimeout bounds startup checks and graceful shutdown of every
// fx-managed component.
const DefaultTimeout = 10 * time.Second
