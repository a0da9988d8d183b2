// Package registry resolves booking server addresses. The core client takes
// a destination address as a plain parameter; a registry is the optional
// layer above it that discovers which addresses exist.
package registry

// ServiceName is the key under which booking servers register themselves.
const ServiceName = "facility-booking"

// ServiceInstance describes one reachable booking server.
type ServiceInstance struct {
	Addr   string `json:"addr"`   // UDP host:port
	Weight int    `json:"weight"` // relative capacity for weighted balancing
}

// Registry registers and discovers booking server instances.
type Registry interface {
	Register(serviceName string, instance ServiceInstance, ttl int64) error
	Deregister(serviceName string, addr string) error
	Discover(serviceName string) ([]ServiceInstance, error)
}
