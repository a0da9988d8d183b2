package registry

import (
	"testing"
)

// Needs a reachable etcd; skipped otherwise so the suite runs standalone.
func TestEtcdRegistryLifecycle(t *testing.T) {
	r, err := NewEtcdRegistry([]string{"127.0.0.1:2379"})
	if err != nil {
		t.Skipf("etcd unavailable: %v", err)
	}
	defer r.Close()

	instance := ServiceInstance{Addr: "127.0.0.1:9999", Weight: 1}
	if err := r.Register("facility-booking-test", instance, 5); err != nil {
		t.Skipf("etcd unavailable: %v", err)
	}
	defer r.Deregister("facility-booking-test", instance.Addr)

	instances, err := r.Discover("facility-booking-test")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, in := range instances {
		if in.Addr == instance.Addr && in.Weight == instance.Weight {
			found = true
		}
	}
	if !found {
		t.Errorf("registered instance not discovered: %v", instances)
	}

	if err := r.Deregister("facility-booking-test", instance.Addr); err != nil {
		t.Fatal(err)
	}
	instances, err = r.Discover("facility-booking-test")
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range instances {
		if in.Addr == instance.Addr {
			t.Error("instance still discoverable after deregister")
		}
	}
}
