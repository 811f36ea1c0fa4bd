package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sort is the transaction order of an address page.
type Sort string

const (
	SortDesc Sort = "desc"
	SortAsc  Sort = "asc"
)

// ParseSort accepts "asc" and "desc"; anything else is desc.
func ParseSort(s string) Sort {
	if strings.EqualFold(s, string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// ErrNoAddressAPI is reported when no address backend is configured.
var ErrNoAddressAPI = errors.New("No address API configured") //nolint:stylecheck

// AddressQuery asks for one page of an address history.
type AddressQuery struct {
	Address      string
	ScriptPubKey string
	Sort         Sort
	Limit        int
	Offset       int
}

// Capabilities describes what an address backend can page and sort natively.
type Capabilities struct {
	PageNumbers bool `json:"pageNumbers"`
	SortDesc    bool `json:"sortDesc"`
	SortAsc     bool `json:"sortAsc"`
}

// Conflict carries every server's raw answer for a field the servers disagreed on.
type Conflict struct {
	Field     string      `json:"field"`
	Responses interface{} `json:"responses"`
}

// AddressDetails is one page of an address history plus its totals. Nil amounts are unknown.
type AddressDetails struct {
	Address               string           `json:"address"`
	ScriptPubKey          string           `json:"scriptPubKey,omitempty"`
	TxCount               *int64           `json:"txCount,omitempty"`
	BalanceSat            *int64           `json:"balanceSat,omitempty"`
	UnconfirmedBalanceSat *int64           `json:"unconfirmedBalanceSat,omitempty"`
	TotalReceivedSat      *int64           `json:"totalReceivedSat,omitempty"`
	TotalSentSat          *int64           `json:"totalSentSat,omitempty"`
	TxIDs                 []string         `json:"txids"`
	BlockHeightByTxID     map[string]int64 `json:"blockHeightsByTxid,omitempty"`
	Source                string           `json:"source"`
	Conflicts             []Conflict       `json:"conflicts,omitempty"`
}

// AddressResult is what an address lookup produced. Details may be partial or nil when Errors is set.
type AddressResult struct {
	Details *AddressDetails
	Errors  []error
}

// Err joins the collected errors.
func (r AddressResult) Err() error {
	return errors.Join(r.Errors...)
}

// UnsupportedAddressError is returned when a backend cannot serve an address format.
type UnsupportedAddressError struct {
	Backend string
	Address string
	Reason  string
}

func (e *UnsupportedAddressError) Error() string {
	return fmt.Sprintf("%s API does not support %s: %s", e.Backend, e.Address, e.Reason)
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}
