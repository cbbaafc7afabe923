// Package stunutil learns the public side of the station uplink through
// STUN binding requests.
package stunutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pion/stun/v3"
	"github.com/rs/zerolog"

	"apdiag/internal/model"
)

const (
	NATUnknown    = "unknown"
	NATSymmetric  = "symmetric"
	NATEndpointIn = "endpoint_independent"
)

// ErrNoServers is returned when no STUN server is configured.
var ErrNoServers = errors.New("no stun servers configured")

// BindFunc performs one binding request and returns the mapped address.
type BindFunc func(ctx context.Context, server string) (string, error)

// Prober runs a binding request against every configured server.
type Prober struct {
	servers []string
	timeout time.Duration
	bind    BindFunc
	log     zerolog.Logger
}

func NewProber(servers []string, timeout time.Duration, log zerolog.Logger) *Prober {
	p := &Prober{servers: servers, timeout: timeout, log: log}
	p.bind = p.bindUDP
	return p
}

// WithBind replaces the binding transport.
func (p *Prober) WithBind(fn BindFunc) *Prober {
	p.bind = fn
	return p
}

// Report probes the uplink. A report is always returned; failures are
// carried in its Error field.
func (p *Prober) Report(ctx context.Context) model.UplinkReport {
	addr, nat, err := p.Probe(ctx)
	if err != nil {
		if errors.Is(err, ErrNoServers) {
			return model.UplinkReport{Available: false}
		}
		return model.UplinkReport{Available: false, Error: err.Error()}
	}
	return model.UplinkReport{Available: true, PublicAddr: addr, NATType: nat}
}

// Probe returns the first mapped address and the NAT class implied by all
// of them.
func (p *Prober) Probe(ctx context.Context) (string, string, error) {
	if len(p.servers) == 0 {
		return "", NATUnknown, ErrNoServers
	}

	var (
		mapped  []string
		lastErr error
	)
	for _, server := range p.servers {
		addr, err := p.bind(ctx, server)
		if err != nil {
			p.log.Debug().Err(err).Str("server", server).Msg("stun binding failed")
			lastErr = err
			continue
		}
		mapped = append(mapped, addr)
	}
	if len(mapped) == 0 {
		return "", NATUnknown, fmt.Errorf("stun probe: %w", lastErr)
	}
	return mapped[0], Classify(mapped), nil
}

// Classify compares mapped addresses seen by different servers. One
// address is not enough to tell.
func Classify(mapped []string) string {
	if len(mapped) < 2 {
		return NATUnknown
	}
	for _, addr := range mapped[1:] {
		if addr != mapped[0] {
			return NATSymmetric
		}
	}
	return NATEndpointIn
}

func (p *Prober) bindUDP(ctx context.Context, server string) (string, error) {
	uri, err := parseServer(server)
	if err != nil {
		return "", err
	}
	client, err := stun.DialURI(uri, &stun.DialConfig{})
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", server, err)
	}
	defer client.Close()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	type outcome struct {
		addr string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		req := stun.MustBuild(stun.TransactionID, stun.BindingRequest)
		err := client.Do(req, func(ev stun.Event) {
			if ev.Error != nil {
				done <- outcome{err: ev.Error}
				return
			}
			var xor stun.XORMappedAddress
			if err := xor.GetFrom(ev.Message); err != nil {
				done <- outcome{err: err}
				return
			}
			done <- outcome{addr: xor.String()}
		})
		if err != nil {
			done <- outcome{err: err}
		}
	}()

	select {
	case out := <-done:
		return out.addr, out.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func parseServer(server string) (*stun.URI, error) {
	s := strings.TrimSpace(server)
	if s == "" {
		return nil, errors.New("empty stun server")
	}
	if !strings.HasPrefix(s, "stun:") {
		s = "stun:" + s
	}
	uri, err := stun.ParseURI(s)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", server, err)
	}
	return uri, nil
}
