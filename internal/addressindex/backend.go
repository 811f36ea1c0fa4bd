package addressindex

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/addressindex/explorerapi"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/chain"
	"go.uber.org/zap"
)

// Config selects and configures the address backend.
type Config struct {
	Name     string
	Network  chain.Network
	Params   *chaincfg.Params
	Electrum ElectrumClient
	HTTP     explorerapi.HTTPDoer
	Options  explorerapi.Options
	// BaseURL overrides the explorer endpoint.
	BaseURL string
	Metrics explorerapi.Metrics
	Logger  *zap.Logger
}

// SupportedBackends lists the accepted backend names.
func SupportedBackends() []string {
	return []string{
		explorerapi.BlockchainComName,
		explorerapi.BlockchairName,
		explorerapi.BlockcypherName,
		ElectrumName,
		ElectrumXName,
	}
}

// NewBackend builds the configured backend. An empty name yields a nil Backend and no error.
func NewBackend(cfg Config) (Backend, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	newClient := func() *explorerapi.Client {
		return explorerapi.NewClient(name, cfg.HTTP, cfg.Metrics, cfg.Logger, cfg.Options)
	}

	switch name {
	case "":
		return nil, nil
	case ElectrumName, ElectrumXName:
		if cfg.Electrum == nil {
			return nil, fmt.Errorf("address api %s: no electrum servers configured", name)
		}
		return NewElectrumBackend(cfg.Electrum, name), nil
	case explorerapi.BlockchainComName:
		return explorerapi.NewBlockchainCom(newClient(), cfg.BaseURL, cfg.Params), nil
	case explorerapi.BlockcypherName:
		b, err := explorerapi.NewBlockcypher(newClient(), cfg.BaseURL, cfg.Network, cfg.Params)
		if err != nil {
			return nil, err
		}
		return b, nil
	case explorerapi.BlockchairName:
		b, err := explorerapi.NewBlockchair(newClient(), cfg.BaseURL, cfg.Network)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported address api %q, expected one of %s",
			cfg.Name, strings.Join(SupportedBackends(), ", "))
	}
}
