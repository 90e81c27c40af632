package tcp

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/bnema/poolrdp/internal/ports"
)

type dialFunc func(ctx context.Context, network, address string, timeout time.Duration) (net.Conn, error)

type Prober struct {
	dial dialFunc
}

var _ ports.Prober = (*Prober)(nil)

func NewProber() *Prober {
	return &Prober{dial: dialTimeout}
}

// Probe opens and immediately closes one TCP connection.
func (p *Prober) Probe(ctx context.Context, host string, port int, timeout time.Duration) (ports.ProbeResult, error) {
	conn, err := p.dial(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		if isTimeout(err) {
			return ports.ProbeTimedOut, err
		}
		return ports.ProbeError, err
	}
	_ = conn.Close()

	return ports.ProbeReachable, nil
}

func dialTimeout(ctx context.Context, network, address string, timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	return dialer.DialContext(ctx, network, address)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
