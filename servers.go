package redis

import "errors"

var ErrNoServersAvailable = errors.New("redis: no servers available")

// Servers provides the current list of server addresses. Static lists
// cover most deployments; dynamic implementations can back this with
// service discovery.
type Servers interface {
	List() []string
}

// NewStaticServers returns a fixed server list.
func NewStaticServers(addresses ...string) Servers {
	return &staticServers{addresses: addresses}
}

type staticServers struct {
	addresses []string
}

func (s *staticServers) List() []string {
	return s.addresses
}
