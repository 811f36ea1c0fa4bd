package explorerapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/chain"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
)

const (
	BlockcypherName = "blockcypher.com"
	BlockcypherURL  = "https://api.blockcypher.com/v1/btc"

	// blockcypherMaxRefs is the largest limit the endpoint honours.
	blockcypherMaxRefs = 2000
)

type blockcypherAddress struct {
	Address            string `json:"address"`
	NTx                int64  `json:"n_tx"`
	TotalReceived      int64  `json:"total_received"`
	TotalSent          int64  `json:"total_sent"`
	FinalBalance       int64  `json:"final_balance"`
	UnconfirmedBalance int64  `json:"unconfirmed_balance"`
	TxRefs             []struct {
		TxHash      string `json:"tx_hash"`
		BlockHeight int64  `json:"block_height"`
	} `json:"txrefs"`
}

// Blockcypher has no offset parameter, so pages are cut client side from the first offset+limit refs.
type Blockcypher struct {
	client  *Client
	baseURL string
	chain   string
	params  *chaincfg.Params
}

func NewBlockcypher(client *Client, baseURL string, network chain.Network, params *chaincfg.Params) (*Blockcypher, error) {
	if baseURL == "" {
		baseURL = BlockcypherURL
	}
	var name string
	switch network {
	case chain.Mainnet:
		name = "main"
	case chain.Testnet:
		name = "test3"
	default:
		return nil, fmt.Errorf("%s: unsupported network %q", BlockcypherName, network)
	}
	return &Blockcypher{client: client, baseURL: baseURL, chain: name, params: params}, nil
}

func (b *Blockcypher) Name() string {
	return BlockcypherName
}

func (b *Blockcypher) Capabilities() model.Capabilities {
	return model.Capabilities{PageNumbers: true, SortDesc: true}
}

func (b *Blockcypher) AddressDetails(ctx context.Context, q model.AddressQuery) (model.AddressResult, error) {
	if err := rejectNativeSegwit(BlockcypherName, q.Address, b.params); err != nil {
		return model.AddressResult{}, err
	}

	fetch := q.Offset + q.Limit
	if fetch > blockcypherMaxRefs {
		fetch = blockcypherMaxRefs
	}
	u := fmt.Sprintf("%s/%s/addrs/%s?limit=%s", b.baseURL, b.chain, url.PathEscape(q.Address), strconv.Itoa(fetch))

	var resp blockcypherAddress
	if err := b.client.GetJSON(ctx, "addrs", u, &resp); err != nil {
		return model.AddressResult{}, err
	}

	// one ref per touched input or output; offsets count refs, so the page is cut by position
	refs := window(resp.TxRefs, q.Offset, q.Limit)
	txids := make([]string, 0, len(refs))
	heights := make(map[string]int64, len(refs))
	for _, ref := range refs {
		heights[ref.TxHash] = ref.BlockHeight
		txids = append(txids, ref.TxHash)
	}

	details := &model.AddressDetails{
		Address:           q.Address,
		ScriptPubKey:      q.ScriptPubKey,
		TxCount:           model.Int64(resp.NTx),
		BalanceSat:        model.Int64(resp.FinalBalance),
		TotalReceivedSat:  model.Int64(resp.TotalReceived),
		TotalSentSat:      model.Int64(resp.TotalSent),
		TxIDs:             append([]string{}, txids...),
		BlockHeightByTxID: make(map[string]int64, len(txids)),
		Source:            BlockcypherName,
	}
	if resp.UnconfirmedBalance != 0 {
		details.UnconfirmedBalanceSat = model.Int64(resp.UnconfirmedBalance)
	}
	for _, txid := range txids {
		details.BlockHeightByTxID[txid] = heights[txid]
	}
	return model.AddressResult{Details: details}, nil
}
