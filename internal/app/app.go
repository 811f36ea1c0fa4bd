// Package app assembles the resolver stack shared by the commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/addressindex"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/addressindex/explorerapi"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/cache"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/chain"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/electrum"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/metrics"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/node"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/xpub"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/pkg/batcher"
	"go.uber.org/zap"
)

const (
	clientName      = "blockinsight7000-addrindex"
	protocolVersion = "1.4"
)

// Config is embedded by every command.
type Config struct {
	Network     string `long:"network" env:"NETWORK" description:"bitcoin network: mainnet, testnet, regtest or signet" default:"mainnet"`
	RPCURL      string `long:"rpc-url" env:"RPC_URL" description:"Bitcoin Core RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser     string `long:"rpc-user" env:"RPC_USER" description:"Bitcoin Core RPC username"`
	RPCPassword string `long:"rpc-password" env:"RPC_PASSWORD" description:"Bitcoin Core RPC password"`
	RPCChunk    int    `long:"rpc-chunk-size" env:"RPC_CHUNK_SIZE" description:"max requests per RPC batch" default:"100"`

	CacheSize          int           `long:"cache-size" env:"CACHE_SIZE" description:"in-process cache entries" default:"10000"`
	RedisURL           string        `long:"redis-url" env:"REDIS_URL" description:"shared redis cache, empty disables it"`
	RedisWriteBehind   bool          `long:"redis-write-behind" env:"REDIS_WRITE_BEHIND" description:"queue redis writes and flush them in batches"`
	RedisBatchSize     int           `long:"redis-batch-size" env:"REDIS_BATCH_SIZE" description:"write-behind batch size" default:"100"`
	RedisFlushInterval time.Duration `long:"redis-flush-interval" env:"REDIS_FLUSH_INTERVAL" description:"write-behind flush interval" default:"1s"`

	AddressAPI          string        `long:"address-api" env:"ADDRESS_API" description:"address backend: blockchain.com, blockchair, blockcypher, electrum or electrumx"`
	ExplorerURL         string        `long:"explorer-url" env:"EXPLORER_URL" description:"override the explorer base URL"`
	ExplorerRPS         int           `long:"explorer-rps" env:"EXPLORER_RPS" description:"explorer requests per second, 0 is unlimited" default:"2"`
	ExplorerTimeout     time.Duration `long:"explorer-timeout" env:"EXPLORER_TIMEOUT" description:"explorer request timeout" default:"15s"`
	ElectrumServers     []string      `long:"electrum-server" env:"ELECTRUM_SERVERS" env-delim:"," description:"electrum server, repeatable (tcp://host:port, tls://host:port or host:port:s)"`
	ElectrumInsecureTLS bool          `long:"electrum-insecure-tls" env:"ELECTRUM_INSECURE_TLS" description:"skip certificate checks for electrum servers"`
	ElectrumPing        time.Duration `long:"electrum-ping-interval" env:"ELECTRUM_PING_INTERVAL" description:"electrum keep-alive interval" default:"1m"`

	GapLimit int `long:"gap-limit" env:"GAP_LIMIT" description:"consecutive empty addresses that end a key scan" default:"20"`
}

// App holds the assembled services.
type App struct {
	Network  chain.Network
	Params   *chaincfg.Params
	Node     *node.Service
	Electrum *electrum.Client
	Router   *addressindex.Router
	Scanner  *xpub.Scanner

	closers []func()
}

// Build wires the node client, cache tiers, electrum pool, address backend and key scanner.
// The electrum keep-alive loop runs until ctx is done.
func Build(ctx context.Context, cfg Config, logger *zap.Logger) (*App, error) {
	network, err := chain.ParseNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}
	params, err := network.Params()
	if err != nil {
		return nil, err
	}
	genesis := chain.GenesisFor(params)
	a := &App{Network: network, Params: params}

	connCfg, err := node.ConnConfig(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return nil, fmt.Errorf("rpc config: %w", err)
	}
	rpc, err := node.NewRPCTransport(connCfg, metrics.NewRPCClient(chain.BTC, network))
	if err != nil {
		return nil, fmt.Errorf("init rpc client: %w", err)
	}
	a.closers = append(a.closers, rpc.Shutdown)

	memory, err := cache.NewLRUStore(cfg.CacheSize, metrics.NewCache("node"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init cache: %w", err)
	}
	shared, closeShared := cache.DialShared(ctx, cfg.RedisURL, cache.Namespace(cfg.RPCUser+":"+cfg.RPCPassword), logger, metrics.NewCache("node"))
	if rs, ok := shared.(*cache.RedisStore); ok && cfg.RedisWriteBehind {
		rs.EnableWriteBehind(ctx, batcher.Options{Size: cfg.RedisBatchSize, Interval: cfg.RedisFlushInterval})
		a.closers = append(a.closers, rs.Close)
	}
	a.closers = append(a.closers, closeShared)

	resolver := cache.NewResolver(cache.NewTieredStore(logger, memory, shared), logger, metrics.NewCache("node"))
	a.Node = node.NewService(node.NewGateway(rpc, cfg.RPCChunk, logger), resolver, genesis, logger)

	var electrumClient addressindex.ElectrumClient
	if len(cfg.ElectrumServers) > 0 {
		servers := make([]electrum.Server, 0, len(cfg.ElectrumServers))
		for _, raw := range cfg.ElectrumServers {
			s, err := electrum.ParseServer(raw)
			if err != nil {
				a.Close()
				return nil, err
			}
			servers = append(servers, s)
		}
		a.Electrum = electrum.NewClient(
			servers,
			electrum.NewDialer(clientName, protocolVersion, cfg.ElectrumInsecureTLS),
			genesis,
			metrics.NewElectrum(network),
			logger,
			electrum.Options{PingInterval: cfg.ElectrumPing},
		)
		if err := a.Electrum.Connect(ctx); err != nil {
			logger.Warn("some electrum servers failed to connect", zap.Error(err))
		}
		go func() {
			if err := a.Electrum.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("electrum keep-alive stopped", zap.Error(err))
			}
		}()
		a.closers = append(a.closers, a.Electrum.Close)
		electrumClient = a.Electrum
	}

	apiMetrics := metrics.NewAddressAPI(cfg.AddressAPI)
	backend, err := addressindex.NewBackend(addressindex.Config{
		Name:     cfg.AddressAPI,
		Network:  network,
		Params:   params,
		Electrum: electrumClient,
		HTTP:     &http.Client{},
		Options: explorerapi.Options{
			Timeout:   cfg.ExplorerTimeout,
			RPS:       cfg.ExplorerRPS,
			UserAgent: clientName,
		},
		BaseURL: cfg.ExplorerURL,
		Metrics: apiMetrics,
		Logger:  logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Router = addressindex.NewRouter(backend, apiMetrics, logger)
	a.Scanner = xpub.NewScanner(a.Node, a.Router, params, metrics.NewXpubScanner(network), logger, xpub.Options{GapLimit: cfg.GapLimit})

	logger.Info("resolver stack ready",
		zap.String("network", string(network)),
		zap.String("addressAPI", a.Router.BackendName()),
		zap.Int("electrumServers", len(cfg.ElectrumServers)),
	)
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
