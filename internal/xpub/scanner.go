package xpub

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
	"go.uber.org/zap"
)

const (
	// DefaultGapLimit is the BIP44 account discovery gap.
	DefaultGapLimit = 20
	defaultPageSize = 20
)

var (
	// ErrNoDetails is returned when the address index answers without details.
	ErrNoDetails = errors.New("address index returned no details")
	// ErrConflict is returned when the address index reports disagreeing sources.
	ErrConflict = errors.New("address index sources disagree")
)

// Options tune the scan. Zero values fall back to defaults.
type Options struct {
	GapLimit int
	PageSize int
}

// UsedAddress is a derived address with history.
type UsedAddress struct {
	Chain    string   `json:"type"`
	Index    int      `json:"addressIndex"`
	Address  string   `json:"address"`
	TxIDs    []string `json:"txids"`
	PriorGap int      `json:"priorGap"`
}

// EmptyAddresses are the scanned addresses without history, per chain.
type EmptyAddresses struct {
	Receive []string `json:"receive"`
	Change  []string `json:"change"`
}

// ScanResult is the outcome of a gap scan.
type ScanResult struct {
	TxIDs          []string       `json:"txids"`
	UsedAddresses  []UsedAddress  `json:"usedAddresses"`
	EmptyAddresses EmptyAddresses `json:"emptyAddresses"`
	AddressCount   int            `json:"addressCount"`
}

// KeyReport is a key description together with its scan.
type KeyReport struct {
	KeyDetails
	ScanResult
	TxCount int `json:"txCount"`
}

// Scanner walks the receive and change chains of a key until both hit the gap limit.
type Scanner struct {
	validator AddressValidator
	index     AddressIndex
	params    *chaincfg.Params
	gapLimit  int
	pageSize  int
	metrics   Metrics
	logger    *zap.Logger
}

func NewScanner(
	validator AddressValidator,
	index AddressIndex,
	params *chaincfg.Params,
	metrics Metrics,
	logger *zap.Logger,
	opts Options,
) *Scanner {
	if opts.GapLimit <= 0 {
		opts.GapLimit = DefaultGapLimit
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	return &Scanner{
		validator: validator,
		index:     index,
		params:    params,
		gapLimit:  opts.GapLimit,
		pageSize:  opts.PageSize,
		metrics:   metrics,
		logger:    logger.Named("xpub"),
	}
}

// SearchTxids scans address indexes in lockstep on both chains. A chain stops once gapLimit
// consecutive addresses are empty; addressLimit caps the indexes visited, negative is unlimited.
func (s *Scanner) SearchTxids(ctx context.Context, key *ExtendedKey, addressLimit int) (res ScanResult, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveScan(err, started)
	}()

	res = ScanResult{
		TxIDs:          []string{},
		UsedAddresses:  []UsedAddress{},
		EmptyAddresses: EmptyAddresses{Receive: []string{}, Change: []string{}},
	}
	seen := make(map[string]struct{})
	gaps := map[Chain]int{ChainReceive: 0, ChainChange: 0}

	index := 0
	for ; addressLimit < 0 || index < addressLimit; index++ {
		for _, ch := range []Chain{ChainReceive, ChainChange} {
			if gaps[ch] >= s.gapLimit {
				continue
			}
			if err := ctx.Err(); err != nil {
				return ScanResult{}, err
			}

			address, txids, err := s.scanAddress(ctx, key, ch, index)
			if err != nil {
				return ScanResult{}, err
			}

			s.metrics.ObserveAddress(ch.String(), len(txids) > 0)
			if len(txids) == 0 {
				gaps[ch]++
				if ch == ChainReceive {
					res.EmptyAddresses.Receive = append(res.EmptyAddresses.Receive, address)
				} else {
					res.EmptyAddresses.Change = append(res.EmptyAddresses.Change, address)
				}
				continue
			}

			res.UsedAddresses = append(res.UsedAddresses, UsedAddress{
				Chain:    ch.String(),
				Index:    index,
				Address:  address,
				TxIDs:    txids,
				PriorGap: gaps[ch],
			})
			gaps[ch] = 0
			for _, txid := range txids {
				if _, ok := seen[txid]; ok {
					continue
				}
				seen[txid] = struct{}{}
				res.TxIDs = append(res.TxIDs, txid)
			}
		}

		if gaps[ChainReceive] >= s.gapLimit && gaps[ChainChange] >= s.gapLimit {
			index++
			break
		}
	}
	res.AddressCount = index

	s.logger.Debug("scan finished",
		zap.String("key_type", string(key.Prefix)),
		zap.Int("addresses", res.AddressCount),
		zap.Int("used", len(res.UsedAddresses)),
		zap.Int("txids", len(res.TxIDs)))
	return res, nil
}

func (s *Scanner) scanAddress(ctx context.Context, key *ExtendedKey, ch Chain, index int) (string, []string, error) {
	derived, err := DeriveAddresses(key, key.OutputType, ch, 1, index, s.params)
	if err != nil {
		return "", nil, err
	}
	address := derived[0]

	info, err := s.validator.ValidateAddress(ctx, address)
	if err != nil {
		return "", nil, fmt.Errorf("validate %s/%d %s: %w", ch, index, address, err)
	}

	var (
		txids    []string
		previous []string
	)
	pageSeen := make(map[string]struct{})
	for offset := 0; ; offset += s.pageSize {
		res, err := s.index.GetAddressDetails(ctx, model.AddressQuery{
			Address:      info.Address,
			ScriptPubKey: info.ScriptPubKey,
			Sort:         model.SortDesc,
			Limit:        s.pageSize,
			Offset:       offset,
		})
		if err != nil {
			return "", nil, fmt.Errorf("address %s: %w", address, err)
		}
		if cause := unusable(res); cause != nil {
			return "", nil, fmt.Errorf("address %s: %w", address, cause)
		}

		page := res.Details.TxIDs
		for _, txid := range page {
			if _, ok := pageSeen[txid]; ok {
				continue
			}
			pageSeen[txid] = struct{}{}
			txids = append(txids, txid)
		}
		// a repeated page means the source ignores offsets
		if len(page) < s.pageSize || slices.Equal(page, previous) {
			return address, txids, nil
		}
		previous = page
	}
}

func unusable(res model.AddressResult) error {
	if len(res.Errors) > 0 {
		return res.Err()
	}
	if res.Details == nil {
		return ErrNoDetails
	}
	if len(res.Details.Conflicts) > 0 {
		return ErrConflict
	}
	return nil
}

// Details describes the key and scans it.
func (s *Scanner) Details(ctx context.Context, key *ExtendedKey, addressLimit int) (KeyReport, error) {
	details, err := Describe(key, s.params)
	if err != nil {
		return KeyReport{}, err
	}
	scan, err := s.SearchTxids(ctx, key, addressLimit)
	if err != nil {
		return KeyReport{}, err
	}
	return KeyReport{KeyDetails: details, ScanResult: scan, TxCount: len(scan.TxIDs)}, nil
}

// Addresses derives count addresses of the key's own output type.
func (s *Scanner) Addresses(key *ExtendedKey, ch Chain, count, start int) ([]string, error) {
	return DeriveAddresses(key, key.OutputType, ch, count, start, s.params)
}
