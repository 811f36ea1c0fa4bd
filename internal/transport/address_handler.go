// Package transport exposes the address API over HTTP.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/electrum"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/node"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/xpub"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultAddressCount = 20
	maxAddressCount     = 1000
)

var errBadRequest = errors.New("bad request")

// AddressResponse is the body of GET /api/address/{address}.
type AddressResponse struct {
	Backend        string                `json:"backend"`
	Capabilities   model.Capabilities    `json:"capabilities"`
	AddressDetails *model.AddressDetails `json:"addressDetails"`
	Errors         []string              `json:"errors,omitempty"`
}

// AddressesResponse is the body of GET /api/xyzpub/{key}/addresses.
type AddressesResponse struct {
	Chain     string   `json:"chain"`
	Start     int      `json:"start"`
	Addresses []string `json:"addresses"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// AddressHandler serves address, extended key and transaction lookups.
type AddressHandler struct {
	router   AddressRouter
	node     NodeService
	scanner  KeyScanner
	electrum ElectrumStats
	logger   *zap.Logger
}

// NewAddressHandler builds the handler. electrumStats may be nil.
func NewAddressHandler(
	router AddressRouter,
	nodeService NodeService,
	scanner KeyScanner,
	electrumStats ElectrumStats,
	logger *zap.Logger,
) *AddressHandler {
	return &AddressHandler{
		router:   router,
		node:     nodeService,
		scanner:  scanner,
		electrum: electrumStats,
		logger:   logger.Named("transport"),
	}
}

// Routes registers every endpoint on a new router.
func (h *AddressHandler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/api/address/{address}", h.address).Methods(http.MethodGet)
	r.HandleFunc("/api/xyzpub/{key}", h.keyDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/xyzpub/{key}/addresses", h.keyAddresses).Methods(http.MethodGet)
	r.HandleFunc("/api/xyzpub/{key}/txs", h.keyTxids).Methods(http.MethodGet)
	r.HandleFunc("/api/tx/{txid}", h.transaction).Methods(http.MethodGet)
	r.HandleFunc("/api/electrum/stats", h.electrumStats).Methods(http.MethodGet)
	return r
}

func (h *AddressHandler) health(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AddressHandler) address(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := intParam(query.Get("limit"), 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	offset, err := intParam(query.Get("offset"), 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	info, err := h.node.ValidateAddress(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.router.GetAddressDetails(r.Context(), model.AddressQuery{
		Address:      info.Address,
		ScriptPubKey: info.ScriptPubKey,
		Sort:         model.ParseSort(query.Get("sort")),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := AddressResponse{
		Backend:        h.router.BackendName(),
		Capabilities:   h.router.Capabilities(),
		AddressDetails: res.Details,
	}
	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	h.write(w, http.StatusOK, resp)
}

func (h *AddressHandler) keyDetails(w http.ResponseWriter, r *http.Request) {
	key, limit, ok := h.keyAndLimit(w, r)
	if !ok {
		return
	}
	report, err := h.scanner.Details(r.Context(), key, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, report)
}

func (h *AddressHandler) keyTxids(w http.ResponseWriter, r *http.Request) {
	key, limit, ok := h.keyAndLimit(w, r)
	if !ok {
		return
	}
	res, err := h.scanner.SearchTxids(r.Context(), key, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, res)
}

func (h *AddressHandler) keyAddresses(w http.ResponseWriter, r *http.Request) {
	key, err := xpub.ParseKey(mux.Vars(r)["key"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	query := r.URL.Query()
	ch, err := chainParam(query.Get("chain"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	count, err := intParam(query.Get("count"), defaultAddressCount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	start, err := intParam(query.Get("start"), 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if count > maxAddressCount {
		h.fail(w, r, fmt.Errorf("%w: count above %d", errBadRequest, maxAddressCount))
		return
	}

	addresses, err := h.scanner.Addresses(key, ch, count, start)
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	h.write(w, http.StatusOK, AddressesResponse{Chain: ch.String(), Start: start, Addresses: addresses})
}

func (h *AddressHandler) transaction(w http.ResponseWriter, r *http.Request) {
	txid := mux.Vars(r)["txid"]
	if _, err := chainhash.NewHashFromStr(txid); err != nil || len(txid) != chainhash.MaxHashStringSize {
		h.fail(w, r, fmt.Errorf("%w: invalid txid %q", errBadRequest, txid))
		return
	}
	tx, err := h.node.GetRawTransaction(r.Context(), txid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, tx)
}

func (h *AddressHandler) electrumStats(w http.ResponseWriter, r *http.Request) {
	if h.electrum == nil {
		h.write(w, http.StatusNotFound, errorResponse{Error: "electrum is not configured"})
		return
	}
	h.write(w, http.StatusOK, h.electrum.Stats())
}

func (h *AddressHandler) keyAndLimit(w http.ResponseWriter, r *http.Request) (*xpub.ExtendedKey, int, bool) {
	key, err := xpub.ParseKey(mux.Vars(r)["key"])
	if err != nil {
		h.fail(w, r, err)
		return nil, 0, false
	}
	limit, err := intParam(r.URL.Query().Get("limit"), -1)
	if err != nil {
		h.fail(w, r, err)
		return nil, 0, false
	}
	return key, limit, true
}

func (h *AddressHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	h.write(w, status, errorResponse{Error: err.Error()})
}

func (h *AddressHandler) write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Debug("write response", zap.Error(err))
	}
}

func statusOf(err error) int {
	var unsupported *model.UnsupportedAddressError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, node.ErrInvalidAddress),
		errors.Is(err, xpub.ErrUnsupportedKey),
		errors.Is(err, xpub.ErrPrivateKey),
		errors.As(err, &unsupported):
		return http.StatusBadRequest
	case errors.Is(err, electrum.ErrNoServers):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errBadRequest, raw)
	}
	return v, nil
}

func chainParam(raw string) (xpub.Chain, error) {
	switch raw {
	case "", "0", "receive":
		return xpub.ChainReceive, nil
	case "1", "change":
		return xpub.ChainChange, nil
	default:
		return 0, fmt.Errorf("%w: chain must be receive or change", errBadRequest)
	}
}
