package transport

import (
	"math/rand"

	"github.com/vaultsync/core/pkg/errors"
)

// GatewaySet is a configured list of equivalent API/upload/download
// gateway hosts; Pick chooses one uniformly at random, per spec.md's
// "one entry chosen uniformly at random from a configured list of
// equivalent gateways".
type GatewaySet struct {
	hosts []string
}

// NewGatewaySet wraps a non-empty list of gateway hosts.
func NewGatewaySet(hosts []string) (*GatewaySet, error) {
	if len(hosts) == 0 {
		return nil, errors.NewValidationError("gateway set must have at least one host", nil)
	}
	return &GatewaySet{hosts: hosts}, nil
}

// Pick returns one gateway host chosen uniformly at random.
func (g *GatewaySet) Pick() string {
	if len(g.hosts) == 1 {
		return g.hosts[0]
	}
	return g.hosts[rand.Intn(len(g.hosts))]
}
