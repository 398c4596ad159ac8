// Package utils holds small host-integration helpers.
package utils

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	natlib "github.com/libp2p/go-nat"
)

// ErrNoGateway reports that discovery finished without finding a NAT device.
var ErrNoGateway = errors.New("no nat gateway discovered")

// Gateway is the discovered NAT device, aliased so callers never import the
// nat library directly.
type Gateway = natlib.NAT

// natTimeout bounds discovery and mapping calls; SSDP probes otherwise hang
// for the full multicast window.
const natTimeout = 5 * time.Second

var (
	gatewayOnce sync.Once
	gateway     Gateway
	gatewayErr  error
)

// DiscoverGateway locates the NAT gateway via UPnP or NAT-PMP. The result is
// cached for the process lifetime; repeated SSDP sweeps are slow and noisy.
func DiscoverGateway(ctx context.Context) (Gateway, error) {
	gatewayOnce.Do(func() {
		c, cancel := context.WithTimeout(ctx, natTimeout)
		defer cancel()
		gateway, gatewayErr = natlib.DiscoverGateway(c)
	})
	return gateway, gatewayErr
}

// ExternalIP reports the gateway's public address.
func ExternalIP(ctx context.Context) (net.IP, error) {
	gw, err := DiscoverGateway(ctx)
	if err != nil {
		return nil, err
	}
	if gw == nil {
		return nil, ErrNoGateway
	}
	return gw.GetExternalAddress()
}

// MapPort creates or refreshes a mapping for the internal port and returns
// the external port the gateway picked. Refreshing is re-adding with a new
// lifetime; gateways treat it as an upsert.
func MapPort(ctx context.Context, protocol string, internalPort int, description string, lifetime time.Duration) (int, error) {
	gw, err := DiscoverGateway(ctx)
	if err != nil {
		return 0, err
	}
	if gw == nil {
		return 0, ErrNoGateway
	}
	c, cancel := context.WithTimeout(ctx, natTimeout)
	defer cancel()
	return gw.AddPortMapping(c, protocol, internalPort, description, lifetime)
}

// UnmapPort removes the mapping for the internal port.
func UnmapPort(ctx context.Context, protocol string, internalPort int) error {
	gw, err := DiscoverGateway(ctx)
	if err != nil {
		return err
	}
	if gw == nil {
		return ErrNoGateway
	}
	c, cancel := context.WithTimeout(ctx, natTimeout)
	defer cancel()
	return gw.DeletePortMapping(c, protocol, internalPort)
}
