package explorerapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/chain"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
)

const (
	BlockchairName = "blockchair.com"
	BlockchairURL  = "https://api.blockchair.com"

	// blockchairPageSize is fixed by the dashboard endpoint whatever limit is asked for.
	blockchairPageSize = 100
)

type blockchairDashboard struct {
	Data map[string]struct {
		Address struct {
			TransactionCount int64 `json:"transaction_count"`
			Received         int64 `json:"received"`
			Spent            int64 `json:"spent"`
			Balance          int64 `json:"balance"`
		} `json:"address"`
		Transactions []string `json:"transactions"`
	} `json:"data"`
}

// Blockchair reads the address dashboard, which takes an offset and returns up to 100 txids.
type Blockchair struct {
	client  *Client
	baseURL string
	chain   string
}

func NewBlockchair(client *Client, baseURL string, network chain.Network) (*Blockchair, error) {
	if baseURL == "" {
		baseURL = BlockchairURL
	}
	var name string
	switch network {
	case chain.Mainnet:
		name = "bitcoin"
	case chain.Testnet:
		name = "bitcoin/testnet"
	default:
		return nil, fmt.Errorf("%s: unsupported network %q", BlockchairName, network)
	}
	return &Blockchair{client: client, baseURL: baseURL, chain: name}, nil
}

func (b *Blockchair) Name() string {
	return BlockchairName
}

func (b *Blockchair) Capabilities() model.Capabilities {
	return model.Capabilities{PageNumbers: true, SortDesc: true}
}

func (b *Blockchair) AddressDetails(ctx context.Context, q model.AddressQuery) (model.AddressResult, error) {
	u := fmt.Sprintf("%s/%s/dashboards/address/%s?offset=%s",
		b.baseURL, b.chain, url.PathEscape(q.Address), strconv.Itoa(q.Offset))

	var resp blockchairDashboard
	if err := b.client.GetJSON(ctx, "dashboards_address", u, &resp); err != nil {
		return model.AddressResult{}, err
	}

	entry, ok := resp.Data[q.Address]
	if !ok && len(resp.Data) == 1 {
		for _, only := range resp.Data {
			entry, ok = only, true
		}
	}
	if !ok {
		return model.AddressResult{}, fmt.Errorf("%s: address %s missing from response", BlockchairName, q.Address)
	}

	limit := q.Limit
	if limit > blockchairPageSize {
		limit = blockchairPageSize
	}
	txids := window(entry.Transactions, 0, limit)

	return model.AddressResult{Details: &model.AddressDetails{
		Address:          q.Address,
		ScriptPubKey:     q.ScriptPubKey,
		TxCount:          model.Int64(entry.Address.TransactionCount),
		BalanceSat:       model.Int64(entry.Address.Balance),
		TotalReceivedSat: model.Int64(entry.Address.Received),
		TotalSentSat:     model.Int64(entry.Address.Spent),
		TxIDs:            append([]string{}, txids...),
		Source:           BlockchairName,
	}}, nil
}
