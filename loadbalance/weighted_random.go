package loadbalance

import (
	"math/rand/v2"

	"facility-rpc/registry"
)

// WeightedRandomBalancer picks instances with probability proportional to
// their registered weight. Instances with no weight set count as weight 1
// so they stay reachable.
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}
	total := 0
	for _, in := range instances {
		total += max(in.Weight, 1)
	}
	r := rand.IntN(total)
	for i, in := range instances {
		r -= max(in.Weight, 1)
		if r < 0 {
			return &instances[i], nil
		}
	}
	return &instances[len(instances)-1], nil
}

func (b *WeightedRandomBalancer) Name() string {
	return "WeightedRandom"
}
