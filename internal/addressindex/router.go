// Package addressindex routes address history lookups to the configured backend.
package addressindex

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
	"go.uber.org/zap"
)

const defaultLimit = 10

var (
	// ErrEmptyAddress is returned for a query without an address.
	ErrEmptyAddress = errors.New("address is required")
	// ErrNoTxCount is reported when ascending order is emulated for a backend that did not
	// report how many transactions the address has.
	ErrNoTxCount = errors.New("backend reported no transaction count, ascending order unavailable")
)

// Router serves address lookups from a single backend, emulating ascending order when the
// backend only pages newest first.
type Router struct {
	backend Backend
	metrics Metrics
	logger  *zap.Logger
}

// NewRouter wraps backend, which may be nil when no address API is configured.
func NewRouter(backend Backend, metrics Metrics, logger *zap.Logger) *Router {
	name := "none"
	if backend != nil {
		name = backend.Name()
	}
	return &Router{
		backend: backend,
		metrics: metrics,
		logger:  logger.Named("addressindex").With(zap.String("backend", name)),
	}
}

// BackendName returns the configured backend or an empty string.
func (r *Router) BackendName() string {
	if r.backend == nil {
		return ""
	}
	return r.backend.Name()
}

// Capabilities reports what callers can ask for, including emulated ascending order.
func (r *Router) Capabilities() model.Capabilities {
	if r.backend == nil {
		return model.Capabilities{}
	}
	caps := r.backend.Capabilities()
	if caps.SortDesc {
		caps.SortAsc = true
	}
	return caps
}

// GetAddressDetails returns one page of the address history.
func (r *Router) GetAddressDetails(ctx context.Context, q model.AddressQuery) (res model.AddressResult, err error) {
	if r.backend == nil {
		return model.AddressResult{Errors: []error{model.ErrNoAddressAPI}}, nil
	}
	if q.Address == "" {
		return model.AddressResult{}, ErrEmptyAddress
	}
	if q.Sort != model.SortAsc {
		q.Sort = model.SortDesc
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	started := time.Now()
	defer func() {
		r.metrics.Observe("address_details", err, started)
	}()

	if q.Sort == model.SortAsc && !r.backend.Capabilities().SortAsc {
		res, err = r.ascending(ctx, q)
	} else {
		res, err = r.backend.AddressDetails(ctx, q)
	}
	if err != nil {
		r.logger.Debug("address lookup failed", zap.String("address", q.Address), zap.Error(err))
		return model.AddressResult{}, err
	}
	for _, e := range res.Errors {
		r.logger.Warn("address lookup partially failed", zap.String("address", q.Address), zap.Error(e))
	}
	return res, nil
}

// ascending reads the matching newest-first window and reverses it.
func (r *Router) ascending(ctx context.Context, q model.AddressQuery) (model.AddressResult, error) {
	probe := q
	probe.Sort, probe.Limit, probe.Offset = model.SortDesc, 1, 0
	res, err := r.backend.AddressDetails(ctx, probe)
	if err != nil {
		return model.AddressResult{}, err
	}
	if res.Details == nil {
		return res, nil
	}
	if res.Details.TxCount == nil {
		return emptyPage(res, ErrNoTxCount), nil
	}

	start, limit := ascendingWindow(*res.Details.TxCount, q.Limit, q.Offset)
	if limit <= 0 {
		return emptyPage(res), nil
	}

	page := q
	page.Sort, page.Limit, page.Offset = model.SortDesc, limit, start
	res, err = r.backend.AddressDetails(ctx, page)
	if err != nil {
		return model.AddressResult{}, err
	}
	if res.Details != nil {
		details := *res.Details
		details.TxIDs = reversed(details.TxIDs)
		res.Details = &details
	}
	return res, nil
}

// emptyPage keeps the probe's totals and drops its newest-first transactions.
func emptyPage(probe model.AddressResult, errs ...error) model.AddressResult {
	details := *probe.Details
	details.TxIDs = []string{}
	details.BlockHeightByTxID = map[string]int64{}
	return model.AddressResult{Details: &details, Errors: append(probe.Errors, errs...)}
}

// ascendingWindow maps an oldest-first page onto newest-first offsets.
func ascendingWindow(total int64, limit, offset int) (start, size int) {
	s := total - int64(limit) - int64(offset)
	size = limit
	if s < 0 {
		size += int(s)
		s = 0
	}
	return int(s), size
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
