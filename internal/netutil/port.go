package netutil

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/giantswarm/pgenv/internal/sentinel"
)

// ErrPortInUse is returned when another server in this process already holds
// the requested port.
const ErrPortInUse = sentinel.Error("port already reserved by another server")

// allocateAttempts caps how often AllocatePort asks the kernel for a port
// before giving up on finding one the registry does not hold.
const allocateAttempts = 20

// PortRegistry is the set of TCP ports claimed by servers of this process.
// The kernel may hand out a just-released port twice, so every allocation is
// checked against the set before it is returned.
type PortRegistry struct {
	mu      sync.Mutex
	claimed map[int]struct{}
	log     *slog.Logger
}

// NewPortRegistry returns an empty registry. A nil logger uses slog.Default().
func NewPortRegistry(logger *slog.Logger) *PortRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortRegistry{claimed: make(map[int]struct{}), log: logger}
}

// claim adds port to the set, returning false if it was already there.
func (r *PortRegistry) claim(port int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.claimed[port]; taken {
		return false
	}
	r.claimed[port] = struct{}{}
	return true
}

// Reserve claims an explicitly configured port. Whether some other process
// listens there is only discovered when pg_ctl starts the server.
func (r *PortRegistry) Reserve(port int) error {
	if r.claim(port) {
		return nil
	}
	return fmt.Errorf("reserve port %d: %w", port, ErrPortInUse)
}

// Release forgets port. Releasing an unclaimed port is a no-op.
func (r *PortRegistry) Release(port int) {
	r.mu.Lock()
	delete(r.claimed, port)
	r.mu.Unlock()
}

// AllocatePort claims a loopback port chosen by the kernel. The probe socket
// is closed before returning so postgres can bind the port itself; the
// caller owns the claim and must Release it.
func (r *PortRegistry) AllocatePort() (int, error) {
	for attempt := 1; attempt <= allocateAttempts; attempt++ {
		port, err := r.kernelPort()
		if err != nil {
			return 0, err
		}
		if r.claim(port) {
			return port, nil
		}
		r.log.Debug("kernel returned a claimed port", "port", port, "attempt", attempt)
	}
	return 0, fmt.Errorf("allocate port: no unclaimed port after %d attempts", allocateAttempts)
}

// kernelPort binds 127.0.0.1:0, reads the assigned port and closes the socket.
func (r *PortRegistry) kernelPort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("probe loopback port: %w", err)
	}
	addr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		_ = l.Close()
		return 0, fmt.Errorf("probe loopback port: unexpected address type %T", l.Addr())
	}
	if err := l.Close(); err != nil {
		r.log.Warn("close port probe", "port", addr.Port, "error", err)
	}
	return addr.Port, nil
}
