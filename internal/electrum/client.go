package electrum

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/chain"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/clock"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/pkg/workerpool"
	"go.uber.org/zap"
)

const defaultPingInterval = time.Minute

// State of one server connection.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	// StateFailed servers failed their first handshake and are never dialed again.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options tune the client. Zero values fall back to defaults.
type Options struct {
	PingInterval time.Duration
}

type member struct {
	server          Server
	name            string
	state           State
	conn            Conn
	everConnected   bool
	serverVersion   string
	protocolVersion string
	lastErr         error
}

type connected struct {
	name string
	conn Conn
}

// Client fans every query out to all connected servers and compares their answers.
type Client struct {
	mu      sync.RWMutex
	members []*member

	dial              Dialer
	genesis           chain.Genesis
	genesisScripthash string
	metrics           Metrics
	stats             *statsRecorder
	pingInterval      time.Duration
	logger            *zap.Logger
}

// NewClient builds a quorum client over the configured servers. Nothing is dialed until Connect.
func NewClient(
	servers []Server,
	dial Dialer,
	genesis chain.Genesis,
	metrics Metrics,
	logger *zap.Logger,
	opts Options,
) *Client {
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	members := make([]*member, 0, len(servers))
	for _, s := range servers {
		members = append(members, &member{server: s, name: s.Address()})
	}
	c := &Client{
		members:      members,
		dial:         dial,
		genesis:      genesis,
		metrics:      metrics,
		stats:        newStatsRecorder(time.Now),
		pingInterval: opts.PingInterval,
		logger:       logger.Named("electrum"),
	}
	if len(genesis.OutputAddressScript) > 0 {
		c.genesisScripthash = ScriptHash(genesis.OutputAddressScript)
	}
	return c
}

// Connect dials and handshakes every disconnected server concurrently. Servers that fail are
// reported in the joined error; the others stay usable.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.RLock()
	pending := make([]*member, 0, len(c.members))
	for _, m := range c.members {
		if m.state == StateDisconnected {
			pending = append(pending, m)
		}
	}
	c.mu.RUnlock()

	errs := make([]error, len(pending))
	var wg sync.WaitGroup
	for i, m := range pending {
		wg.Add(1)
		go func(i int, m *member) {
			defer wg.Done()
			errs[i] = c.connect(ctx, m)
		}(i, m)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (c *Client) connect(ctx context.Context, m *member) error {
	c.mu.Lock()
	if m.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	m.state = StateConnecting
	redial := m.everConnected
	c.mu.Unlock()

	started := time.Now()
	conn, err := c.dial(ctx, m.server)
	if err == nil {
		var serverVer, protoVer string
		serverVer, protoVer, err = conn.ServerVersion(ctx)
		c.metrics.Observe(m.name, MethodServerVersion, err, started)
		if err != nil {
			conn.Close()
		} else {
			c.mu.Lock()
			m.state = StateConnected
			m.conn = conn
			m.everConnected = true
			m.serverVersion, m.protocolVersion = serverVer, protoVer
			m.lastErr = nil
			c.mu.Unlock()

			c.stats.event(EventConnect)
			c.metrics.ObserveConnection(m.name, EventConnect)
			c.logger.Info("connected",
				zap.Stringer("server", m.server),
				zap.String("server_version", serverVer),
				zap.String("protocol_version", protoVer))
			return nil
		}
	}

	c.mu.Lock()
	m.lastErr = err
	if redial {
		m.state = StateDisconnected
	} else {
		m.state = StateFailed
	}
	c.mu.Unlock()

	c.stats.event(EventError)
	c.metrics.ObserveConnection(m.name, EventError)
	c.logger.Warn("connect failed",
		zap.Stringer("server", m.server),
		zap.Bool("redial", redial),
		zap.Error(err))
	return fmt.Errorf("connect %s: %w", m.server, err)
}

func (c *Client) disconnect(m *member, cause error) {
	c.mu.Lock()
	if m.state != StateConnected {
		c.mu.Unlock()
		return
	}
	conn := m.conn
	m.conn = nil
	m.state = StateDisconnected
	m.lastErr = cause
	c.mu.Unlock()

	conn.Close()
	c.stats.event(EventDisconnect)
	c.metrics.ObserveConnection(m.name, EventDisconnect)
	c.logger.Warn("disconnected", zap.Stringer("server", m.server), zap.Error(cause))
}

func (c *Client) connected() []connected {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]connected, 0, len(c.members))
	for _, m := range c.members {
		if m.state == StateConnected {
			out = append(out, connected{name: m.name, conn: m.conn})
		}
	}
	return out
}

// ConnectedCount returns how many servers currently take part in queries.
func (c *Client) ConnectedCount() int {
	return len(c.connected())
}

// GetHistory returns the scripthash history agreed by every connected server.
func (c *Client) GetHistory(ctx context.Context, scripthash string) (Result[[]HistoryEntry], error) {
	responses, err := fanOut(ctx, c, MethodGetHistory, func(ctx context.Context, conn Conn) ([]HistoryEntry, error) {
		history, err := conn.GetHistory(ctx, scripthash)
		if err != nil {
			return nil, err
		}
		if scripthash == c.genesisScripthash {
			history = append([]HistoryEntry{{TxHash: c.genesis.CoinbaseTxID, Height: 0}}, history...)
		}
		return history, nil
	})
	if err != nil {
		return Result[[]HistoryEntry]{}, err
	}
	return agree(c, MethodGetHistory, responses, func(a, b []HistoryEntry) bool {
		return len(a) == len(b)
	}), nil
}

// GetBalance returns the scripthash balance agreed by every connected server.
func (c *Client) GetBalance(ctx context.Context, scripthash string) (Result[Balance], error) {
	responses, err := fanOut(ctx, c, MethodGetBalance, func(ctx context.Context, conn Conn) (Balance, error) {
		balance, err := conn.GetBalance(ctx, scripthash)
		if err != nil {
			return Balance{}, err
		}
		if scripthash == c.genesisScripthash {
			balance.Confirmed += c.genesis.SubsidySat
		}
		return balance, nil
	})
	if err != nil {
		return Result[Balance]{}, err
	}
	return agree(c, MethodGetBalance, responses, func(a, b Balance) bool {
		return a.Confirmed == b.Confirmed
	}), nil
}

func fanOut[T any](
	ctx context.Context,
	c *Client,
	method string,
	call func(context.Context, Conn) (T, error),
) ([]ServerResponse[T], error) {
	servers := c.connected()
	if len(servers) == 0 {
		return nil, ErrNoServers
	}

	started := time.Now()
	responses, err := workerpool.Collect(ctx, servers, func(ctx context.Context, s connected) (ServerResponse[T], error) {
		callStarted := time.Now()
		res, err := call(ctx, s.conn)
		c.metrics.Observe(s.name, method, err, callStarted)
		if err != nil {
			c.stats.event(EventError)
			return ServerResponse[T]{}, fmt.Errorf("%s on %s: %w", method, s.name, err)
		}
		return ServerResponse[T]{Server: s.name, Result: res}, nil
	})
	c.stats.call(method, time.Since(started), err)
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// agree compares every response against the first one.
func agree[T any](c *Client, method string, responses []ServerResponse[T], same func(a, b T) bool) Result[T] {
	first := responses[0]
	for _, r := range responses[1:] {
		if !same(first.Result, r.Result) {
			c.metrics.ObserveConflict(method)
			c.logger.Warn("servers disagree", zap.String("method", method), zap.Int("servers", len(responses)))
			return Result[T]{Conflicts: responses}
		}
	}
	return Result[T]{Value: first.Result}
}

// Run pings connected servers every interval, drops the ones that stop answering and redials
// servers that had connected before. It returns when ctx is done.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := clock.SleepWithContext(ctx, c.pingInterval); err != nil {
			return err
		}
		c.keepAlive(ctx)
	}
}

func (c *Client) keepAlive(ctx context.Context) {
	c.mu.RLock()
	members := append([]*member(nil), c.members...)
	c.mu.RUnlock()

	var wg sync.WaitGroup
	for _, m := range members {
		c.mu.RLock()
		state, conn, redial := m.state, m.conn, m.everConnected
		c.mu.RUnlock()

		switch {
		case state == StateConnected:
			wg.Add(1)
			go func(m *member, conn Conn) {
				defer wg.Done()
				started := time.Now()
				err := conn.Ping(ctx)
				c.metrics.Observe(m.name, MethodPing, err, started)
				if err != nil && ctx.Err() == nil {
					c.disconnect(m, err)
				}
			}(m, conn)
		case state == StateDisconnected && redial:
			wg.Add(1)
			go func(m *member) {
				defer wg.Done()
				_ = c.connect(ctx, m)
			}(m)
		}
	}
	wg.Wait()
}

// Stats returns the call counters and the state of every server.
func (c *Client) Stats() Stats {
	stats := c.stats.snapshot()

	c.mu.RLock()
	defer c.mu.RUnlock()
	stats.Servers = make([]ServerStatus, 0, len(c.members))
	for _, m := range c.members {
		status := ServerStatus{
			Server:          m.server.String(),
			State:           m.state.String(),
			ServerVersion:   m.serverVersion,
			ProtocolVersion: m.protocolVersion,
		}
		if m.lastErr != nil {
			status.LastError = m.lastErr.Error()
		}
		stats.Servers = append(stats.Servers, status)
	}
	return stats
}

// Close shuts every open connection down.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.members {
		if m.conn != nil {
			m.conn.Close()
			m.conn = nil
		}
		if m.state == StateConnected {
			m.state = StateDisconnected
		}
	}
}
