package ports

import (
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"
)

const (
	searchSpan  = 1000
	maxAttempts = 50
)

// FindAvailablePort returns startPort when it can be bound on host, otherwise a
// random free port in [startPort, startPort+1000]
func FindAvailablePort(host string, startPort int) (int, error) {
	if IsPortAvailable(host, startPort) {
		return startPort, nil
	}

	maxPort := startPort + searchSpan
	if maxPort > 65535 {
		maxPort = 65535
	}
	return FindAvailablePortInRange(host, startPort, maxPort)
}

// FindAvailablePortInRange probes random ports in [minPort, maxPort]
func FindAvailablePortInRange(host string, minPort, maxPort int) (int, error) {
	if minPort > maxPort {
		return 0, fmt.Errorf("minPort (%d) must be <= maxPort (%d)", minPort, maxPort)
	}

	for attempts := 0; attempts < maxAttempts; attempts++ {
		port := minPort + rand.IntN(maxPort-minPort+1)
		if IsPortAvailable(host, port) {
			return port, nil
		}
	}

	return 0, fmt.Errorf("unable to find available port after %d attempts in range %d-%d", maxAttempts, minPort, maxPort)
}

// IsPortAvailable reports whether a TCP listener can be opened on host:port
func IsPortAvailable(host string, port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}
