package service

import (
	"context"
)

// StaticAccessGate is the production AccessGate: a single rate administrator
// and a fixed set of supply controllers, both taken from configuration at
// startup.
type StaticAccessGate struct {
	administrator string
	controllers   map[string]struct{}
}

// NewStaticAccessGate builds a gate from the administrator address and the
// supply-controller address list
func NewStaticAccessGate(administrator string, supplyControllers []string) *StaticAccessGate {
	controllers := make(map[string]struct{}, len(supplyControllers))
	for _, addr := range supplyControllers {
		if addr != "" {
			controllers[addr] = struct{}{}
		}
	}
	return &StaticAccessGate{
		administrator: administrator,
		controllers:   controllers,
	}
}

func (g *StaticAccessGate) HasSupplyControl(_ context.Context, address string) bool {
	_, ok := g.controllers[address]
	return ok
}

func (g *StaticAccessGate) IsRateAdministrator(_ context.Context, address string) bool {
	return g.administrator != "" && address == g.administrator
}
