package main

import (
	"fmt"
	"net"
)

func splitAddr(addr string) (string, string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", "", fmt.Errorf("invalid --addr %q: %w", addr, err)
	}
	if port == "" {
		return "", "", fmt.Errorf("invalid --addr %q: missing port", addr)
	}
	return host, port, nil
}
