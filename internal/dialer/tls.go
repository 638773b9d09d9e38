package dialer

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
)

// underscores show up in real host names, so STD3 rules are relaxed
var sniProfile = idna.New(idna.MapForLookup(), idna.StrictDomainName(false))

var ErrServerName = errors.New("invalid server name")

// ServerName returns the name presented in the SNI extension and checked
// against the peer certificate. ASCII names keep the case they were given
// in, internationalized ones are converted to their lowercase A-label form.
// IP literals come back unchanged, crypto/tls verifies them against IP SANs
// and leaves SNI out.
func ServerName(host string) (string, error) {
	host = strings.Trim(host, "[]")
	if host == "" {
		return "", fmt.Errorf("%w: empty host", ErrServerName)
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return ip.String(), nil
	}
	name, err := sniProfile.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrServerName, host, err)
	}
	if strings.EqualFold(name, host) {
		name = host
	}
	if len(strings.TrimSuffix(name, ".")) > 253 {
		return "", fmt.Errorf("%w: %q is longer than 253 bytes", ErrServerName, host)
	}
	return name, nil
}

// ClientConfig derives the configuration of one TLS client session from
// base. Peer verification is always on, roots nil means the system pool.
func ClientConfig(base *tls.Config, roots *x509.CertPool, host string) (*tls.Config, error) {
	name, err := ServerName(host)
	if err != nil {
		return nil, err
	}
	config := base.Clone()
	if config == nil {
		config = &tls.Config{}
	}
	config.ServerName = name
	config.InsecureSkipVerify = false
	if roots != nil {
		config.RootCAs = roots
	}
	if config.MinVersion == 0 {
		config.MinVersion = tls.VersionTLS12
	}
	config.NextProtos = []string{"http/1.1"} // don't want h2
	return config, nil
}

// Handshake layers a client TLS session over c. On failure c is left open
// for the caller to release.
func Handshake(ctx context.Context, c net.Conn, config *tls.Config) (*tls.Conn, error) {
	tc := tls.Client(c, config)
	if err := tc.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return tc, nil
}
