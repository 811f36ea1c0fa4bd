package electrum

import (
	"context"
	"crypto/tls"
	"fmt"
	"math"
	"sync"

	"github.com/checksum0/go-electrum/electrum"
)

// Dialer opens a connection to one server.
type Dialer func(ctx context.Context, server Server) (Conn, error)

var identifyOnce sync.Once

// NewDialer returns a Dialer backed by go-electrum. The client name and protocol version are
// sent with server.version. insecureTLS skips certificate checks, which most public servers need.
func NewDialer(clientName, protocolVersion string, insecureTLS bool) Dialer {
	identifyOnce.Do(func() {
		if clientName != "" {
			electrum.ClientVersion = clientName
		}
		if protocolVersion != "" {
			electrum.ProtocolVersion = protocolVersion
		}
	})

	return func(ctx context.Context, server Server) (Conn, error) {
		var (
			client *electrum.Client
			err    error
		)
		switch server.Protocol {
		case ProtocolTCP:
			client, err = electrum.NewClientTCP(ctx, server.Address())
		case ProtocolTLS:
			client, err = electrum.NewClientSSL(ctx, server.Address(), &tls.Config{
				ServerName:         server.Host,
				InsecureSkipVerify: insecureTLS, //nolint:gosec
				MinVersion:         tls.VersionTLS12,
			})
		default:
			return nil, fmt.Errorf("dial %s: unsupported protocol %q", server, server.Protocol)
		}
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", server, err)
		}
		return &electrumConn{client: client}, nil
	}
}

type electrumConn struct {
	client *electrum.Client
}

func (c *electrumConn) ServerVersion(ctx context.Context) (string, string, error) {
	return c.client.ServerVersion(ctx)
}

func (c *electrumConn) GetHistory(ctx context.Context, scripthash string) ([]HistoryEntry, error) {
	history, err := c.client.GetHistory(ctx, scripthash)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(history))
	for _, h := range history {
		if h == nil {
			continue
		}
		entries = append(entries, HistoryEntry{TxHash: h.Hash, Height: int64(h.Height)})
	}
	return entries, nil
}

func (c *electrumConn) GetBalance(ctx context.Context, scripthash string) (Balance, error) {
	balance, err := c.client.GetBalance(ctx, scripthash)
	if err != nil {
		return Balance{}, err
	}
	// go-electrum decodes the satoshi amounts as float64.
	return Balance{
		Confirmed:   int64(math.Round(balance.Confirmed)),
		Unconfirmed: int64(math.Round(balance.Unconfirmed)),
	}, nil
}

func (c *electrumConn) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

func (c *electrumConn) Close() {
	c.client.Shutdown()
}
