// Package trust builds the root certificate pool secure connections verify
// their peers against.
package trust

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config selects the root certificates. The zero value trusts the system
// roots only.
type Config struct {
	// CAFile is a PEM bundle merged into the pool.
	CAFile string
	// CADir is scanned (non-recursively) for *.pem and *.crt files.
	CADir string
	// PEM holds certificates embedded by the caller.
	PEM []byte
	// NoSystem starts from an empty pool instead of the system roots.
	NoSystem bool
}

var ErrNoCertificates = errors.New("no valid PEM certificates found")

// Pool builds the root pool. A nil return with a nil error means the
// system roots are used as they are.
func (c *Config) Pool() (*x509.CertPool, error) {
	if c == nil || (c.CAFile == "" && c.CADir == "" && len(c.PEM) == 0 && !c.NoSystem) {
		return nil, nil
	}

	var pool *x509.CertPool
	if !c.NoSystem {
		pool, _ = x509.SystemCertPool()
	}
	if pool == nil {
		pool = x509.NewCertPool()
	}

	if len(c.PEM) != 0 && !pool.AppendCertsFromPEM(c.PEM) {
		return nil, fmt.Errorf("inline pem: %w", ErrNoCertificates)
	}

	if c.CAFile != "" {
		data, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("ca file: read failed: %w", err)
		}
		if !pool.AppendCertsFromPEM(data) {
			return nil, fmt.Errorf("ca file %q: %w", c.CAFile, ErrNoCertificates)
		}
	}

	if c.CADir != "" {
		entries, err := os.ReadDir(c.CADir)
		if err != nil {
			return nil, fmt.Errorf("ca dir: read failed: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			base := strings.ToLower(e.Name())
			if !strings.HasSuffix(base, ".pem") && !strings.HasSuffix(base, ".crt") {
				continue
			}
			path := filepath.Join(c.CADir, e.Name())
			fi, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("ca dir: stat %q failed: %w", path, err)
			}
			if !fi.Mode().IsRegular() {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("ca dir: read %q failed: %w", path, err)
			}
			if !pool.AppendCertsFromPEM(data) {
				return nil, fmt.Errorf("ca dir %q: %w", path, ErrNoCertificates)
			}
		}
	}

	return pool, nil
}
