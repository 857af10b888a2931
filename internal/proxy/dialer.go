package proxy

import (
	"context"
	"fmt"
	"net"
	"time"

	netproxy "golang.org/x/net/proxy"
)

// Dialer dials directly, or through the SOCKS5 proxy pinned on the context.
type Dialer struct {
	Timeout time.Duration
}

func (d Dialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	direct := &net.Dialer{Timeout: d.Timeout}

	p := FromContext(ctx)
	if p == nil || !isSOCKS(p) {
		return direct.DialContext(ctx, network, addr)
	}

	pdialer, err := netproxy.FromURL(p, direct)
	if err != nil {
		return nil, fmt.Errorf("socks proxy %s: %w", p.Host, err)
	}

	var conn net.Conn
	if cdialer, ok := pdialer.(netproxy.ContextDialer); ok {
		conn, err = cdialer.DialContext(ctx, network, addr)
	} else {
		conn, err = pdialer.Dial(network, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s via %s: %w", addr, p.Host, err)
	}
	return conn, nil
}
