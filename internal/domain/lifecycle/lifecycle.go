// Package lifecycle holds shared timing constants for component startup and
// shutdown hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup pings and graceful shutdown of managed
// components.
const DefaultTimeout = 10 * time.Second
