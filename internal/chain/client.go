package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrTransactionNotFound is returned when a transaction hash is unknown to
// the ledger node. Payment verification is a point-in-time check, so the
// caller must not assume the transaction will eventually appear.
var ErrTransactionNotFound = errors.New("transaction not found on ledger")

// PolicyChainStatus mirrors the contract-side status enum.
type PolicyChainStatus uint8

const (
	StatusActive  PolicyChainStatus = 0
	StatusClaimed PolicyChainStatus = 1
	StatusExpired PolicyChainStatus = 2
)

// FlightChainPolicy is a flight policy as read off the ledger.
type FlightChainPolicy struct {
	ID                uint64
	Holder            common.Address
	FlightNumber      string
	DepartureTime     time.Time
	CoveragePerPerson *big.Int
	Persons           uint64
	Premium           *big.Int
	Status            PolicyChainStatus
	PayoutAmount      *big.Int
}

// RainfallChainPolicy is a rainfall policy as read off the ledger.
// Coordinates come back in CoordScale fixed point and the threshold in
// RainScale fixed point, exactly as they were written at authorization time.
type RainfallChainPolicy struct {
	ID              uint64
	Holder          common.Address
	LatScaled       int64
	LonScaled       int64
	PeriodStart     time.Time
	PeriodEnd       time.Time
	ThresholdScaled int64
	ConditionBelow  bool
	Premium         *big.Int
	Status          PolicyChainStatus
	PayoutAmount    *big.Int
}

// FlightLedger is the flight-delay contract surface the service depends on.
type FlightLedger interface {
	PolicyCount(ctx context.Context) (uint64, error)
	GetPolicy(ctx context.Context, id uint64) (*FlightChainPolicy, error)
	ExpirePolicy(ctx context.Context, id uint64) (string, error)
	ProcessDelayOutcome(ctx context.Context, id uint64, delayMinutes uint64) (string, error)
}

// RainfallLedger is the rainfall contract surface the service depends on.
type RainfallLedger interface {
	PolicyCount(ctx context.Context) (uint64, error)
	GetPolicy(ctx context.Context, id uint64) (*RainfallChainPolicy, error)
	ExpirePolicy(ctx context.Context, id uint64) (string, error)
	ProcessRainfallOutcome(ctx context.Context, id uint64, rainScaled int64) (string, error)
}

// LedgerTransaction is the subset of a ledger transaction the payment
// verifier compares against an application.
type LedgerTransaction struct {
	Hash  string
	From  common.Address
	To    common.Address
	Value *big.Int
}

// TxReader reads finalized transactions from the ledger node.
type TxReader interface {
	TransactionByHash(ctx context.Context, hash string) (*LedgerTransaction, error)
}

const flightContractABI = `[
	{"type":"function","name":"policyCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getPolicy","stateMutability":"view","inputs":[{"name":"policyId","type":"uint256"}],"outputs":[
		{"name":"holder","type":"address"},
		{"name":"flightNumber","type":"string"},
		{"name":"departureTime","type":"uint256"},
		{"name":"coveragePerPerson","type":"uint256"},
		{"name":"persons","type":"uint256"},
		{"name":"premium","type":"uint256"},
		{"name":"status","type":"uint8"},
		{"name":"payoutAmount","type":"uint256"}]},
	{"type":"function","name":"expirePolicy","stateMutability":"nonpayable","inputs":[{"name":"policyId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"processDelayOutcome","stateMutability":"nonpayable","inputs":[{"name":"policyId","type":"uint256"},{"name":"delayMinutes","type":"uint256"}],"outputs":[]}
]`

const rainfallContractABI = `[
	{"type":"function","name":"policyCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getPolicy","stateMutability":"view","inputs":[{"name":"policyId","type":"uint256"}],"outputs":[
		{"name":"holder","type":"address"},
		{"name":"latScaled","type":"int256"},
		{"name":"lonScaled","type":"int256"},
		{"name":"periodStart","type":"uint256"},
		{"name":"periodEnd","type":"uint256"},
		{"name":"thresholdScaled","type":"uint256"},
		{"name":"conditionBelow","type":"bool"},
		{"name":"premium","type":"uint256"},
		{"name":"status","type":"uint8"},
		{"name":"payoutAmount","type":"uint256"}]},
	{"type":"function","name":"expirePolicy","stateMutability":"nonpayable","inputs":[{"name":"policyId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"processRainfallOutcome","stateMutability":"nonpayable","inputs":[{"name":"policyId","type":"uint256"},{"name":"actualRainScaled","type":"uint256"}],"outputs":[]}
]`

// Client wraps the ledger node connection and the bound policy contracts.
// All ledger writes are signed by the custody key and serialized through
// txMu: nonces are per-account and strictly increasing, so two in-flight
// transactions from the oracle account would collide.
type Client struct {
	eth      *ethclient.Client
	chainID  *big.Int
	opts     *bind.TransactOpts
	flight   *bind.BoundContract
	rainfall *bind.BoundContract
	txMu     sync.Mutex
}

func NewClient(rpcURL string, chainID int64, signer *Signer, flightAddr, rainfallAddr string) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ledger node: %w", err)
	}

	id := big.NewInt(chainID)
	opts, err := bind.NewKeyedTransactorWithChainID(signer.PrivateKey(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger transactor: %w", err)
	}

	flightABI, err := abi.JSON(strings.NewReader(flightContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse flight contract ABI: %w", err)
	}
	rainfallABI, err := abi.JSON(strings.NewReader(rainfallContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rainfall contract ABI: %w", err)
	}

	slog.Info("Connected to ledger node",
		"rpc_url", rpcURL,
		"chain_id", chainID,
		"oracle_address", signer.Address().Hex())

	return &Client{
		eth:      eth,
		chainID:  id,
		opts:     opts,
		flight:   bind.NewBoundContract(common.HexToAddress(flightAddr), flightABI, eth, eth, eth),
		rainfall: bind.NewBoundContract(common.HexToAddress(rainfallAddr), rainfallABI, eth, eth, eth),
	}, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

// FlightLedger returns the flight contract view of the client.
func (c *Client) FlightLedger() FlightLedger {
	return &flightLedger{c}
}

// RainfallLedger returns the rainfall contract view of the client.
func (c *Client) RainfallLedger() RainfallLedger {
	return &rainfallLedger{c}
}

// TransactionByHash fetches a finalized transaction and resolves its sender.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (*LedgerTransaction, error) {
	tx, pending, err := c.eth.TransactionByHash(ctx, common.HexToHash(hash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", hash, err)
	}
	if pending {
		return nil, ErrTransactionNotFound
	}

	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover transaction sender: %w", err)
	}

	to := common.Address{}
	if tx.To() != nil {
		to = *tx.To()
	}

	return &LedgerTransaction{
		Hash:  tx.Hash().Hex(),
		From:  from,
		To:    to,
		Value: tx.Value(),
	}, nil
}

// transact submits one contract write and waits for it to be mined. Holding
// txMu for the full submit-and-wait keeps account nonces strictly ordered;
// the caller's context deadline bounds how long the lock can be held.
func (c *Client) transact(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (string, error) {
	c.txMu.Lock()
	defer c.txMu.Unlock()

	opts := *c.opts
	opts.Context = ctx

	tx, err := contract.Transact(&opts, method, params...)
	if err != nil {
		return "", fmt.Errorf("failed to submit %s: %w", method, err)
	}

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return "", fmt.Errorf("failed waiting for %s to mine: %w", method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("%s transaction %s reverted", method, tx.Hash().Hex())
	}

	return tx.Hash().Hex(), nil
}

func (c *Client) policyCount(ctx context.Context, contract *bind.BoundContract) (uint64, error) {
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "policyCount"); err != nil {
		return 0, fmt.Errorf("failed to read policy count: %w", err)
	}
	return out[0].(*big.Int).Uint64(), nil
}

type flightLedger struct {
	c *Client
}

func (l *flightLedger) PolicyCount(ctx context.Context) (uint64, error) {
	return l.c.policyCount(ctx, l.c.flight)
}

func (l *flightLedger) GetPolicy(ctx context.Context, id uint64) (*FlightChainPolicy, error) {
	var out []interface{}
	err := l.c.flight.Call(&bind.CallOpts{Context: ctx}, &out, "getPolicy", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read flight policy %d: %w", id, err)
	}

	return &FlightChainPolicy{
		ID:                id,
		Holder:            out[0].(common.Address),
		FlightNumber:      out[1].(string),
		DepartureTime:     time.Unix(out[2].(*big.Int).Int64(), 0).UTC(),
		CoveragePerPerson: out[3].(*big.Int),
		Persons:           out[4].(*big.Int).Uint64(),
		Premium:           out[5].(*big.Int),
		Status:            PolicyChainStatus(out[6].(uint8)),
		PayoutAmount:      out[7].(*big.Int),
	}, nil
}

func (l *flightLedger) ExpirePolicy(ctx context.Context, id uint64) (string, error) {
	return l.c.transact(ctx, l.c.flight, "expirePolicy", new(big.Int).SetUint64(id))
}

func (l *flightLedger) ProcessDelayOutcome(ctx context.Context, id uint64, delayMinutes uint64) (string, error) {
	return l.c.transact(ctx, l.c.flight, "processDelayOutcome",
		new(big.Int).SetUint64(id), new(big.Int).SetUint64(delayMinutes))
}

type rainfallLedger struct {
	c *Client
}

func (l *rainfallLedger) PolicyCount(ctx context.Context) (uint64, error) {
	return l.c.policyCount(ctx, l.c.rainfall)
}

func (l *rainfallLedger) GetPolicy(ctx context.Context, id uint64) (*RainfallChainPolicy, error) {
	var out []interface{}
	err := l.c.rainfall.Call(&bind.CallOpts{Context: ctx}, &out, "getPolicy", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read rainfall policy %d: %w", id, err)
	}

	return &RainfallChainPolicy{
		ID:              id,
		Holder:          out[0].(common.Address),
		LatScaled:       out[1].(*big.Int).Int64(),
		LonScaled:       out[2].(*big.Int).Int64(),
		PeriodStart:     time.Unix(out[3].(*big.Int).Int64(), 0).UTC(),
		PeriodEnd:       time.Unix(out[4].(*big.Int).Int64(), 0).UTC(),
		ThresholdScaled: out[5].(*big.Int).Int64(),
		ConditionBelow:  out[6].(bool),
		Premium:         out[7].(*big.Int),
		Status:          PolicyChainStatus(out[8].(uint8)),
		PayoutAmount:    out[9].(*big.Int),
	}, nil
}

func (l *rainfallLedger) ExpirePolicy(ctx context.Context, id uint64) (string, error) {
	return l.c.transact(ctx, l.c.rainfall, "expirePolicy", new(big.Int).SetUint64(id))
}

func (l *rainfallLedger) ProcessRainfallOutcome(ctx context.Context, id uint64, rainScaled int64) (string, error) {
	if rainScaled < 0 {
		rainScaled = 0
	}
	return l.c.transact(ctx, l.c.rainfall, "processRainfallOutcome",
		new(big.Int).SetUint64(id), big.NewInt(rainScaled))
}
