// Package tlsconfig holds the TLS settings used to fetch remote inputs and
// to serve the codec over HTTPS.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultTimeout bounds a whole remote fetch when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config describes how http(s) locations are fetched.
type Config struct {
	// Insecure skips certificate verification and permits plain http://
	// locations.
	Insecure bool

	// CACertFile is a PEM bundle trusted in place of the system roots.
	CACertFile string

	Timeout time.Duration
}

// HTTPClient builds a client for fetching http(s) locations.
func (c Config) HTTPClient() (*http.Client, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.Insecure {
		tlsCfg.InsecureSkipVerify = true
	}
	if c.CACertFile != "" {
		pool, err := loadPool(c.CACertFile)
		if err != nil {
			return nil, err
		}
		tlsCfg.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

// CheckLocation rejects plain http:// locations unless Insecure is set.
// Other locations always pass.
func (c Config) CheckLocation(location string) error {
	if len(location) >= 7 && strings.EqualFold(location[:7], "http://") && !c.Insecure {
		return fmt.Errorf("location %q uses plain http; use https:// or pass --insecure", location)
	}
	return nil
}

// Server loads a certificate and key for serving over HTTPS.
func Server(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair: %w", err)
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}

func loadPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate file %q: %w", path, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to parse CA certificate file %q: no valid certificates found", path)
	}
	return pool, nil
}
