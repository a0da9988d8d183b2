package loadbalance

import (
	"sync/atomic"

	"facility-rpc/registry"
)

// RoundRobinBalancer walks the instance list in order, one pick per call.
// The atomic counter keeps it lock-free and goroutine-safe.
type RoundRobinBalancer struct {
	counter atomic.Int64
}

func (b *RoundRobinBalancer) Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}
	index := b.counter.Add(1) % int64(len(instances))
	return &instances[index], nil
}

func (b *RoundRobinBalancer) Name() string {
	return "RoundRobin"
}
