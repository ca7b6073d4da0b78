package netutil

import (
	"errors"
	"fmt"
	"net"
)

// ErrNoFreeAddr is returned when neither the preferred address nor any
// candidate can be bound.
var ErrNoFreeAddr = errors.New("no available bind addresses")

// Listen binds preferred, or the first free candidate when autoFallback is
// set. Holding the listener avoids a race between probing and serving.
func Listen(preferred string, candidates []string, autoFallback bool) (net.Listener, error) {
	if preferred != "" {
		ln, err := net.Listen("tcp", preferred)
		if err == nil {
			return ln, nil
		}
		if !autoFallback {
			return nil, fmt.Errorf("preferred bind address unavailable: %s: %w", preferred, err)
		}
	}

	for _, addr := range candidates {
		if addr == preferred {
			continue
		}
		if ln, err := net.Listen("tcp", addr); err == nil {
			return ln, nil
		}
	}
	return nil, ErrNoFreeAddr
}

// SelectBindAddr reports which address Listen would bind, releasing it again.
func SelectBindAddr(preferred string, candidates []string, autoFallback bool) (string, error) {
	ln, err := Listen(preferred, candidates, autoFallback)
	if err != nil {
		return "", err
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		return "", err
	}
	return addr, nil
}
