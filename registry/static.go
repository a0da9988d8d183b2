package registry

import (
	"fmt"
	"sync"
)

// StaticRegistry serves a fixed instance list from memory. It backs the
// common single-server deployment and the tests; Register and Deregister
// work so it can double as an in-process fake.
type StaticRegistry struct {
	mu        sync.Mutex
	instances map[string][]ServiceInstance
}

func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{instances: make(map[string][]ServiceInstance)}
}

// NewStaticSingle is the one-server convenience: a registry that resolves
// ServiceName to exactly addr.
func NewStaticSingle(addr string) *StaticRegistry {
	r := NewStaticRegistry()
	r.Register(ServiceName, ServiceInstance{Addr: addr, Weight: 1}, 0)
	return r
}

// Register adds an instance. The ttl is ignored; static entries do not expire.
func (r *StaticRegistry) Register(serviceName string, instance ServiceInstance, ttl int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[serviceName] = append(r.instances[serviceName], instance)
	return nil
}

func (r *StaticRegistry) Deregister(serviceName string, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.instances[serviceName][:0]
	for _, in := range r.instances[serviceName] {
		if in.Addr != addr {
			kept = append(kept, in)
		}
	}
	r.instances[serviceName] = kept
	return nil
}

func (r *StaticRegistry) Discover(serviceName string) ([]ServiceInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	instances := r.instances[serviceName]
	if len(instances) == 0 {
		return nil, fmt.Errorf("registry: no instances for %s", serviceName)
	}
	out := make([]ServiceInstance, len(instances))
	copy(out, instances)
	return out, nil
}
