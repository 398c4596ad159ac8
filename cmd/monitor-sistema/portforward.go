package main

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/juanmmendes/monitor-sistema/internal/utils"
)

// Gateway mappings expire; refreshing at half the lifetime keeps the mapping
// alive across one missed attempt.
const (
	mappingLifetime = 10 * time.Minute
	mappingRefresh  = 5 * time.Minute
	mappingLabel    = "monitor-sistema"
)

// portForwarder keeps a TCP mapping for the API port alive on the NAT
// gateway while the process runs. The gateway helpers are struct fields,
// swapped out in tests.
type portForwarder struct {
	port int
	log  zerolog.Logger

	mapPort    func(ctx context.Context, protocol string, internalPort int, description string, lifetime time.Duration) (int, error)
	unmapPort  func(ctx context.Context, protocol string, internalPort int) error
	externalIP func(ctx context.Context) (net.IP, error)

	stop chan struct{}
	wg   sync.WaitGroup
}

func newPortForwarder(port int, log zerolog.Logger) *portForwarder {
	return &portForwarder{
		port:       port,
		log:        log,
		mapPort:    utils.MapPort,
		unmapPort:  utils.UnmapPort,
		externalIP: utils.ExternalIP,
	}
}

// Start launches the refresh loop. Calling Start twice is a no-op.
func (p *portForwarder) Start() {
	if p.stop != nil {
		return
	}
	p.stop = make(chan struct{})
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.refresh()
		ticker := time.NewTicker(mappingRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.refresh()
			case <-p.stop:
				return
			}
		}
	}()
}

// refresh creates or renews the mapping. Gateways treat re-adding as an
// upsert, so the same call covers both cases. The gateway's public address
// is attached to the log line when discovery reports one.
func (p *portForwarder) refresh() {
	externalPort, err := p.mapPort(context.Background(), "tcp", p.port, mappingLabel, mappingLifetime)
	if err != nil {
		p.log.Warn().Err(err).Int("port", p.port).Msg("port forward attempt failed")
		return
	}
	event := p.log.Info().
		Int("internal", p.port).
		Int("external", externalPort)
	if ip, ipErr := p.externalIP(context.Background()); ipErr == nil && ip != nil {
		event = event.IPAddr("address", ip)
	}
	event.Msg("port forward active")
}

// Stop ends the refresh loop and removes the mapping best-effort.
func (p *portForwarder) Stop() {
	if p.stop == nil {
		return
	}
	close(p.stop)
	p.wg.Wait()
	p.stop = nil

	if err := p.unmapPort(context.Background(), "tcp", p.port); err != nil {
		p.log.Warn().Err(err).Int("port", p.port).Msg("port forward removal failed")
		return
	}
	p.log.Info().Int("port", p.port).Msg("port forward mapping removed")
}
