package chain

import (
	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Genesis holds the coinbase of a genesis block. Its output is not spendable and is not
// indexed by node wallets or Electrum servers.
type Genesis struct {
	BlockHash      string
	Timestamp      int64
	Coinbase       *wire.MsgTx
	CoinbaseTxID   string
	CoinbaseScript []byte
	SubsidySat     int64
	// OutputAddress is the pay-to-pubkey-hash form of the coinbase key, the address users look up.
	OutputAddress       string
	OutputAddressScript []byte
}

// GenesisFor extracts the genesis coinbase of the given chain.
func GenesisFor(params *chaincfg.Params) Genesis {
	tx := params.GenesisBlock.Transactions[0]
	g := Genesis{
		BlockHash:      params.GenesisHash.String(),
		Timestamp:      params.GenesisBlock.Header.Timestamp.Unix(),
		Coinbase:       tx,
		CoinbaseTxID:   tx.TxHash().String(),
		CoinbaseScript: tx.TxOut[0].PkScript,
		SubsidySat:     blockchain.CalcBlockSubsidy(0, params),
	}

	_, addrs, _, err := txscript.ExtractPkScriptAddrs(g.CoinbaseScript, params)
	if err != nil || len(addrs) != 1 {
		return g
	}
	pk, ok := addrs[0].(*btcutil.AddressPubKey)
	if !ok {
		return g
	}
	p2pkh := pk.AddressPubKeyHash()
	script, err := txscript.PayToAddrScript(p2pkh)
	if err != nil {
		return g
	}
	g.OutputAddress = p2pkh.EncodeAddress()
	g.OutputAddressScript = script
	return g
}
