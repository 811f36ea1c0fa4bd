package electrum

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	ProtocolTCP = "tcp"
	ProtocolTLS = "tls"

	plaintextPort = 50001
)

// Server is one statically configured Electrum server.
type Server struct {
	Host     string
	Port     int
	Protocol string
}

// ParseServer accepts "tcp://host:port", "tls://host:port", "ssl://host:port", "host:port:t",
// "host:port:s" or "host:port". Without a protocol it is tcp on port 50001 and tls otherwise.
func ParseServer(raw string) (Server, error) {
	raw = strings.TrimSpace(raw)
	hostPort, scheme := raw, ""
	switch {
	case strings.HasSuffix(raw, ":t") && strings.Count(raw, ":") == 2:
		hostPort, scheme = strings.TrimSuffix(raw, ":t"), "tcp"
	case strings.HasSuffix(raw, ":s") && strings.Count(raw, ":") == 2:
		hostPort, scheme = strings.TrimSuffix(raw, ":s"), "tls"
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Server{}, fmt.Errorf("parse electrum server %q: %w", raw, err)
		}
		hostPort, scheme = u.Host, strings.ToLower(u.Scheme)
	}

	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return Server{}, fmt.Errorf("parse electrum server %q: %w", raw, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Server{}, fmt.Errorf("parse electrum server %q: invalid port %q", raw, portStr)
	}

	s := Server{Host: host, Port: port}
	switch scheme {
	case "":
		s.Protocol = ProtocolTLS
		if port == plaintextPort {
			s.Protocol = ProtocolTCP
		}
	case "tcp":
		s.Protocol = ProtocolTCP
	case "tls", "ssl":
		s.Protocol = ProtocolTLS
	default:
		return Server{}, fmt.Errorf("parse electrum server %q: unsupported protocol %q", raw, scheme)
	}
	return s, nil
}

// Address returns host:port.
func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s Server) String() string {
	return s.Protocol + "://" + s.Address()
}
