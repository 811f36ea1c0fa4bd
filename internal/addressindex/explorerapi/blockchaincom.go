package explorerapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
)

const (
	BlockchainComName = "blockchain.com"
	BlockchainComURL  = "https://blockchain.info"
)

type blockchainComAddress struct {
	Address       string `json:"address"`
	NTx           int64  `json:"n_tx"`
	TotalReceived int64  `json:"total_received"`
	TotalSent     int64  `json:"total_sent"`
	FinalBalance  int64  `json:"final_balance"`
	Txs           []struct {
		Hash        string `json:"hash"`
		BlockHeight *int64 `json:"block_height"`
	} `json:"txs"`
}

// BlockchainCom reads /rawaddr, which pages newest first.
type BlockchainCom struct {
	client  *Client
	baseURL string
	params  *chaincfg.Params
}

func NewBlockchainCom(client *Client, baseURL string, params *chaincfg.Params) *BlockchainCom {
	if baseURL == "" {
		baseURL = BlockchainComURL
	}
	return &BlockchainCom{client: client, baseURL: baseURL, params: params}
}

func (b *BlockchainCom) Name() string {
	return BlockchainComName
}

func (b *BlockchainCom) Capabilities() model.Capabilities {
	return model.Capabilities{PageNumbers: true, SortDesc: true}
}

func (b *BlockchainCom) AddressDetails(ctx context.Context, q model.AddressQuery) (model.AddressResult, error) {
	if err := rejectNativeSegwit(BlockchainComName, q.Address, b.params); err != nil {
		return model.AddressResult{}, err
	}

	values := url.Values{}
	values.Set("limit", strconv.Itoa(q.Limit))
	values.Set("offset", strconv.Itoa(q.Offset))
	u := fmt.Sprintf("%s/rawaddr/%s?%s", b.baseURL, url.PathEscape(q.Address), values.Encode())

	var resp blockchainComAddress
	if err := b.client.GetJSON(ctx, "rawaddr", u, &resp); err != nil {
		return model.AddressResult{}, err
	}

	details := &model.AddressDetails{
		Address:           q.Address,
		ScriptPubKey:      q.ScriptPubKey,
		TxCount:           model.Int64(resp.NTx),
		BalanceSat:        model.Int64(resp.FinalBalance),
		TotalReceivedSat:  model.Int64(resp.TotalReceived),
		TotalSentSat:      model.Int64(resp.TotalSent),
		TxIDs:             make([]string, 0, len(resp.Txs)),
		BlockHeightByTxID: make(map[string]int64, len(resp.Txs)),
		Source:            BlockchainComName,
	}
	for _, tx := range resp.Txs {
		details.TxIDs = append(details.TxIDs, tx.Hash)
		if tx.BlockHeight != nil {
			details.BlockHeightByTxID[tx.Hash] = *tx.BlockHeight
		}
	}
	return model.AddressResult{Details: details}, nil
}
