package registry

import (
	"testing"
)

func TestStaticRegistryLifecycle(t *testing.T) {
	r := NewStaticRegistry()
	if _, err := r.Discover(ServiceName); err == nil {
		t.Fatal("empty registry discovered instances")
	}

	a := ServiceInstance{Addr: "127.0.0.1:9999", Weight: 1}
	b := ServiceInstance{Addr: "127.0.0.1:9998", Weight: 2}
	r.Register(ServiceName, a, 0)
	r.Register(ServiceName, b, 0)

	instances, err := r.Discover(ServiceName)
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 2 {
		t.Fatalf("got %d instances, want 2", len(instances))
	}

	r.Deregister(ServiceName, a.Addr)
	instances, err = r.Discover(ServiceName)
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 || instances[0].Addr != b.Addr {
		t.Errorf("after deregister got %v, want only %s", instances, b.Addr)
	}
}

func TestStaticSingle(t *testing.T) {
	r := NewStaticSingle("127.0.0.1:9999")
	instances, err := r.Discover(ServiceName)
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 || instances[0].Addr != "127.0.0.1:9999" {
		t.Errorf("got %v", instances)
	}
}

func TestStaticRegistryDiscoverSnapshot(t *testing.T) {
	r := NewStaticSingle("127.0.0.1:9999")
	instances, _ := r.Discover(ServiceName)
	instances[0].Addr = "mutated"

	again, _ := r.Discover(ServiceName)
	if again[0].Addr != "127.0.0.1:9999" {
		t.Error("Discover leaked internal state to the caller")
	}
}
