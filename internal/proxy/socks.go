// Package proxy builds HTTP clients that route through a SOCKS5 proxy, for
// running the assistant behind restrictive networks.
package proxy

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/net/proxy"
)

// NewHTTPClient returns an http.Client whose connections go through the
// SOCKS5 proxy at addr.
func NewHTTPClient(addr string, timeout time.Duration) (*http.Client, error) {
	dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create socks dialer", goerr.V("addr", addr))
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
