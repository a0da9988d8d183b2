// Package loadbalance picks one booking server from a discovered instance
// list. The client resolves its destination once per session — the
// invocation engine itself always talks to a single address — so Pick runs
// at connect time, not per call.
package loadbalance

import (
	"errors"

	"facility-rpc/registry"
)

// ErrNoInstances is returned when discovery produced an empty list.
var ErrNoInstances = errors.New("loadbalance: no instances available")

// Balancer selects one instance from the available list. Implementations
// must be goroutine-safe.
type Balancer interface {
	Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error)
	Name() string
}

// ByName returns the balancer for a config string, defaulting to round-robin.
func ByName(name string) Balancer {
	switch name {
	case "weighted-random":
		return &WeightedRandomBalancer{}
	default:
		return &RoundRobinBalancer{}
	}
}
