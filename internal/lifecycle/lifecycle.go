// Package lifecycle coordinates drain state between the signal handler and
// the health endpoint.
package lifecycle

import "sync/atomic"

var draining atomic.Bool

// SetDraining marks the process as draining. While true the health endpoint
// answers 503 so load balancers stop routing new traffic here.
func SetDraining(v bool) {
	draining.Store(v)
}

// Draining reports whether the process is refusing new work.
func Draining() bool {
	return draining.Load()
}
