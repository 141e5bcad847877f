package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"time"
)

const maxFetchRedirects = 5

// addressPolicy decides which resolved addresses a url input may reach.
type addressPolicy struct {
	allowPrivate bool
}

func (p addressPolicy) permits(ip netip.Addr) bool {
	if p.allowPrivate {
		return true
	}
	ip = ip.Unmap()
	return !ip.IsPrivate() && !ip.IsLoopback() && !ip.IsLinkLocalUnicast() &&
		!ip.IsLinkLocalMulticast() && !ip.IsMulticast() && !ip.IsUnspecified()
}

// checkHost resolves host and fails if any of its addresses is refused, so
// a name that resolves to both public and private addresses is refused.
func (p addressPolicy) checkHost(ctx context.Context, host string) ([]netip.Addr, error) {
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses found for host %s", host)
	}
	for i, addr := range addrs {
		addrs[i] = addr.Unmap()
		if !p.permits(addrs[i]) {
			return nil, fmt.Errorf("blocked request to non-public address: %s (%s); set OASGATE_ALLOW_PRIVATE_IPS to allow", host, addrs[i])
		}
	}
	return addrs, nil
}

// newFetchClient returns the client that downloads documents for url
// inputs. Every dial and every redirect target is checked against p.
func newFetchClient(p addressPolicy) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				addrs, err := p.checkHost(ctx, host)
				if err != nil {
					return nil, err
				}
				// Dial the checked address, not the name, so a second lookup
				// cannot return something else.
				return dialer.DialContext(ctx, network, net.JoinHostPort(addrs[0].String(), port))
			},
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 20 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxFetchRedirects {
				return fmt.Errorf("stopped after %d redirects", maxFetchRedirects)
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return fmt.Errorf("redirect to unsupported scheme %q", req.URL.Scheme)
			}
			_, err := p.checkHost(req.Context(), req.URL.Hostname())
			return err
		},
	}
}
