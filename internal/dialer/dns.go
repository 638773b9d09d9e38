package dialer

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

type ResolveConfig struct {
	CustomDNSServer string            // host:port, queried instead of the system servers
	Network         string            // one of "ip4", "ip6", default is "ip"
	StaticHosts     map[string]string // resembles /etc/hosts
}

func (c *ResolveConfig) Clone() *ResolveConfig {
	if c == nil {
		return nil
	}
	hosts := make(map[string]string, len(c.StaticHosts))
	for k, v := range c.StaticHosts {
		hosts[k] = v
	}
	return &ResolveConfig{
		CustomDNSServer: c.CustomDNSServer,
		Network:         c.Network,
		StaticHosts:     hosts,
	}
}

var ErrNoAddresses = errors.New("no addresses found")

// this type should not be used outside this file.
// prevents non-custom DNS server contexts to iterate through all keys
type dnsServerCtx struct {
	context.Context
	server string
}

var dnsServerCtxKey = &dnsServerCtx{nil, "dns-server"} // non-nil pointer to any object, definitely unique

func (c dnsServerCtx) Value(key interface{}) interface{} {
	if key == dnsServerCtxKey {
		return c.server
	}
	return c.Context.Value(key)
}

var zeroDialer net.Dialer

var customServerResolver = net.Resolver{
	PreferGo: true,
	Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
		if v, ok := ctx.Value(dnsServerCtxKey).(string); ok && v != "" {
			return zeroDialer.DialContext(ctx, network, v)
		}
		return zeroDialer.DialContext(ctx, network, address)
	},
}

// Resolve implements [Resolver]. IP literals and static hosts never hit
// the network.
func (d *CoreDialer) Resolve(ctx context.Context, host, port string) ([]netip.AddrPort, error) {
	if d.Resolver != nil {
		return d.Resolver.Resolve(ctx, host, port)
	}
	p, err := lookupPort(ctx, port)
	if err != nil {
		return nil, err
	}

	cfg := d.ResolveConfig
	if cfg == nil {
		cfg = &ResolveConfig{}
	}
	if static, ok := cfg.StaticHosts[host]; ok {
		host = static
	}
	host = strings.Trim(host, "[]")
	if ip, err := netip.ParseAddr(host); err == nil {
		return []netip.AddrPort{netip.AddrPortFrom(ip.Unmap(), p)}, nil
	}

	network := cfg.Network
	if network == "" {
		network = "ip"
	}
	ips, err := d.LookupIPServer(ctx, network, host, cfg.CustomDNSServer)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, ErrNoAddresses
	}
	eps := make([]netip.AddrPort, len(ips))
	for i, ip := range ips {
		eps[i] = netip.AddrPortFrom(ip.Unmap(), p)
	}
	return eps, nil
}

// LookupIPServer performs DNS lookup for a host on a custom dns server,
// it calls [net.Resolver.LookupNetIP] with a Go Resolver behind the scenes.
// An empty dns uses the system configuration.
func (d *CoreDialer) LookupIPServer(ctx context.Context, network, host, dns string) ([]netip.Addr, error) {
	return customServerResolver.LookupNetIP(dnsServerCtx{ctx, dns}, network, host)
}

func lookupPort(ctx context.Context, port string) (uint16, error) {
	if p, err := strconv.ParseUint(port, 10, 16); err == nil {
		return uint16(p), nil
	}
	p, err := net.DefaultResolver.LookupPort(ctx, "tcp", port)
	if err != nil {
		return 0, err
	}
	return uint16(p), nil
}
