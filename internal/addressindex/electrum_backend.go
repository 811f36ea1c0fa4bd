package addressindex

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/electrum"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
)

const (
	ElectrumName  = "electrum"
	ElectrumXName = "electrumx"

	conflictFieldHistory = "history"
	conflictFieldBalance = "balance"
)

// ErrNoScriptPubKey is returned when a query reaches Electrum without the output script.
var ErrNoScriptPubKey = errors.New("scriptPubKey is required for electrum lookups")

// ElectrumBackend reads full histories from an Electrum quorum and pages them locally.
type ElectrumBackend struct {
	client ElectrumClient
	name   string
}

func NewElectrumBackend(client ElectrumClient, name string) *ElectrumBackend {
	if name == "" {
		name = ElectrumName
	}
	return &ElectrumBackend{client: client, name: name}
}

func (b *ElectrumBackend) Name() string {
	return b.name
}

func (b *ElectrumBackend) Capabilities() model.Capabilities {
	return model.Capabilities{PageNumbers: true, SortDesc: true, SortAsc: true}
}

// AddressDetails queries history and balance concurrently. A failed or disputed sub-query leaves
// its fields empty and is reported in the result rather than failing the lookup.
func (b *ElectrumBackend) AddressDetails(ctx context.Context, q model.AddressQuery) (model.AddressResult, error) {
	if q.ScriptPubKey == "" {
		return model.AddressResult{}, ErrNoScriptPubKey
	}
	scripthash, err := electrum.ScriptHashHex(q.ScriptPubKey)
	if err != nil {
		return model.AddressResult{}, err
	}

	var (
		wg         sync.WaitGroup
		history    electrum.Result[[]electrum.HistoryEntry]
		historyErr error
		balance    electrum.Result[electrum.Balance]
		balanceErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		history, historyErr = b.client.GetHistory(ctx, scripthash)
	}()
	go func() {
		defer wg.Done()
		balance, balanceErr = b.client.GetBalance(ctx, scripthash)
	}()
	wg.Wait()

	if errors.Is(historyErr, electrum.ErrNoServers) && errors.Is(balanceErr, electrum.ErrNoServers) {
		return model.AddressResult{}, historyErr
	}

	details := &model.AddressDetails{
		Address:      q.Address,
		ScriptPubKey: q.ScriptPubKey,
		TxIDs:        []string{},
		Source:       b.name,
	}
	var errs []error

	switch {
	case historyErr != nil:
		errs = append(errs, fmt.Errorf("history: %w", historyErr))
	case history.Conflicted():
		details.Conflicts = append(details.Conflicts, model.Conflict{Field: conflictFieldHistory, Responses: history.Conflicts})
	default:
		fillHistory(details, history.Value, q)
	}

	switch {
	case balanceErr != nil:
		errs = append(errs, fmt.Errorf("balance: %w", balanceErr))
	case balance.Conflicted():
		details.Conflicts = append(details.Conflicts, model.Conflict{Field: conflictFieldBalance, Responses: balance.Conflicts})
	default:
		details.BalanceSat = model.Int64(balance.Value.Confirmed)
		if balance.Value.Unconfirmed != 0 {
			details.UnconfirmedBalanceSat = model.Int64(balance.Value.Unconfirmed)
		}
	}

	return model.AddressResult{Details: details, Errors: errs}, nil
}

// fillHistory pages the oldest-first history the servers return.
func fillHistory(details *model.AddressDetails, history []electrum.HistoryEntry, q model.AddressQuery) {
	ordered := make([]electrum.HistoryEntry, len(history))
	copy(ordered, history)
	if q.Sort != model.SortAsc {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}

	start := q.Offset
	if start > len(ordered) {
		start = len(ordered)
	}
	end := start + q.Limit
	if end > len(ordered) {
		end = len(ordered)
	}

	page := ordered[start:end]
	details.TxCount = model.Int64(int64(len(history)))
	details.TxIDs = make([]string, 0, len(page))
	details.BlockHeightByTxID = make(map[string]int64, len(page))
	for _, h := range page {
		details.TxIDs = append(details.TxIDs, h.TxHash)
		details.BlockHeightByTxID[h.TxHash] = h.Height
	}
}
