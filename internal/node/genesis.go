package node

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/pkg/safe"
)

// genesisTransaction builds the genesis coinbase the node refuses to return.
func (s *Service) genesisTransaction(ctx context.Context) (*btcjson.TxRawResult, error) {
	info, err := s.GetBlockchainInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("genesis confirmations: %w", err)
	}
	confirmations, err := safe.Uint64(info.Blocks + 1)
	if err != nil {
		return nil, fmt.Errorf("genesis confirmations: %w", err)
	}

	tx := s.genesis.Coinbase
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize genesis coinbase: %w", err)
	}

	vin := make([]btcjson.Vin, 0, len(tx.TxIn))
	for _, in := range tx.TxIn {
		vin = append(vin, btcjson.Vin{
			Coinbase: hex.EncodeToString(in.SignatureScript),
			Sequence: in.Sequence,
		})
	}
	vout := make([]btcjson.Vout, 0, len(tx.TxOut))
	for i, out := range tx.TxOut {
		n, err := safe.Uint32(i)
		if err != nil {
			return nil, err
		}
		asm, _ := txscript.DisasmString(out.PkScript)
		vout = append(vout, btcjson.Vout{
			Value: btcutil.Amount(out.Value).ToBTC(),
			N:     n,
			ScriptPubKey: btcjson.ScriptPubKeyResult{
				Asm:  asm,
				Hex:  hex.EncodeToString(out.PkScript),
				Type: txscript.GetScriptClass(out.PkScript).String(),
			},
		})
	}

	version, err := safe.Uint32(tx.Version)
	if err != nil {
		return nil, err
	}
	return &btcjson.TxRawResult{
		Hex:           hex.EncodeToString(buf.Bytes()),
		Txid:          s.genesis.CoinbaseTxID,
		Hash:          s.genesis.CoinbaseTxID,
		Size:          int32(buf.Len()),
		Vsize:         int32(buf.Len()),
		Version:       version,
		LockTime:      tx.LockTime,
		Vin:           vin,
		Vout:          vout,
		BlockHash:     s.genesis.BlockHash,
		Confirmations: confirmations,
		Time:          s.genesis.Timestamp,
		Blocktime:     s.genesis.Timestamp,
	}, nil
}
