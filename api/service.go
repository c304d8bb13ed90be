package api

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	storemetrics "cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/freQuensy23-coder/morphoEmergency/api/websocket"
	"github.com/freQuensy23-coder/morphoEmergency/metrics"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/keeper"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// PoolService exposes the vaultpool keeper to the HTTP layer. All ledger
// writes are serialized behind a single mutex; the keeper's own
// branch-and-commit handles partial-failure rollback.
type PoolService struct {
	keeper *keeper.Keeper
	vault  *SimVaultKeeper
	bank   *SimBankKeeper
	hub    *websocket.Hub

	ctx sdk.Context
	mu  sync.Mutex

	operator string
}

// NewStandaloneService builds a PoolService backed by an in-memory store
// and a simulated vault. This is the standalone daemon mode; embedding in
// a chain app wires the keeper directly instead.
func NewStandaloneService(denom string, logger log.Logger) (*PoolService, error) {
	storeKey := storetypes.NewKVStoreKey(types.ModuleName)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), storemetrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	if err := stateStore.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	cdc := codec.NewProtoCodec(codectypes.NewInterfaceRegistry())
	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, logger)

	bank := NewSimBankKeeper()
	vault := NewSimVaultKeeper(denom, bank)
	operator := sdk.AccAddress([]byte("vaultpool-operator")).String()

	k := keeper.NewKeeper(cdc, storeKey, vault, bank, operator, logger)

	return &PoolService{
		keeper:   k,
		vault:    vault,
		bank:     bank,
		ctx:      ctx,
		operator: operator,
	}, nil
}

// SetHub attaches the websocket hub for event broadcasting
func (s *PoolService) SetHub(hub *websocket.Hub) {
	s.hub = hub
}

// Operator returns the current operator address
func (s *PoolService) Operator() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keeper.Operator(s.ctx)
}

// Vault returns the simulated vault, letting the daemon tweak rates
func (s *PoolService) Vault() *SimVaultKeeper {
	return s.vault
}

func (s *PoolService) writeCtx() sdk.Context {
	return s.ctx.WithBlockTime(time.Now().UTC())
}

// ============ Queries ============

// Pools returns all pools
func (s *PoolService) Pools() []*types.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keeper.GetAllPools(s.ctx)
}

// Pool returns a single pool, nil if it was never created
func (s *PoolService) Pool(poolID string) *types.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keeper.GetPool(s.ctx, poolID)
}

// Position returns a user's position in a pool, implicitly zero if they
// never deposited
func (s *PoolService) Position(poolID, address string) *types.UserPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keeper.GetPosition(s.ctx, poolID, address)
}

// PoolPositions returns every recorded position in a pool
func (s *PoolService) PoolPositions(poolID string) []*types.UserPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keeper.GetPoolPositions(s.ctx, poolID)
}

// Preview returns the current asset value of a user's shares
func (s *PoolService) Preview(poolID, address string) (math.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keeper.PreviewUserAssets(s.ctx, poolID, address)
}

// FeeConfig returns the current performance fee configuration
func (s *PoolService) FeeConfig() types.FeeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keeper.GetFeeConfig(s.ctx)
}

// UserRecords returns a user's ledger records, optionally filtered by kind
func (s *PoolService) UserRecords(address, kind string) []*types.LedgerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keeper.GetUserRecords(s.ctx, address, kind)
}

// ============ Ledger Writes ============

// Deposit moves assets into the vault and credits wrapper shares
func (s *PoolService) Deposit(depositor, poolID string, amount math.Int, receiver string) (*types.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := metrics.NewTimer()
	record, err := s.keeper.Deposit(s.writeCtx(), depositor, poolID, amount, receiver)
	metrics.GetCollector().RecordOperation("deposit", timer.ElapsedMs(), err)
	if err != nil {
		return nil, err
	}

	metrics.GetCollector().RecordDeposit(poolID, intToFloat(record.Assets))
	s.publishRecord(record)
	s.publishPoolState(poolID)
	return record, nil
}

// Withdraw redeems wrapper shares for assets on the normal path
func (s *PoolService) Withdraw(withdrawer, poolID string, shares math.Int, receiver string) (*types.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := metrics.NewTimer()
	record, err := s.keeper.Withdraw(s.writeCtx(), withdrawer, poolID, shares, receiver)
	metrics.GetCollector().RecordOperation("withdraw", timer.ElapsedMs(), err)
	if err != nil {
		return nil, err
	}

	metrics.GetCollector().RecordWithdrawal(poolID, intToFloat(record.Assets), intToFloat(record.Fee))
	s.publishRecord(record)
	s.publishPoolState(poolID)
	return record, nil
}

// TriggerEmergency freezes a pool and snapshots the claim pot
func (s *PoolService) TriggerEmergency(caller, poolID string) (*types.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := metrics.NewTimer()
	pool, err := s.keeper.TriggerEmergency(s.writeCtx(), caller, poolID)
	metrics.GetCollector().RecordOperation("trigger_emergency", timer.ElapsedMs(), err)
	if err != nil {
		return nil, err
	}

	metrics.GetCollector().RecordEmergencyTrigger(poolID, intToFloat(pool.WithdrawnAssets))
	if s.hub != nil {
		s.hub.BroadcastEmergency(&websocket.EmergencyMessage{
			PoolID:          pool.PoolID,
			WithdrawnAssets: pool.WithdrawnAssets.String(),
			FrozenShares:    pool.TotalShares.String(),
			Timestamp:       time.Now().UnixMilli(),
		})
	}
	s.publishPoolState(poolID)
	return pool, nil
}

// EmergencyClaim pays out a user's proportional share of a frozen pool
func (s *PoolService) EmergencyClaim(claimant, poolID string) (*types.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := metrics.NewTimer()
	record, err := s.keeper.EmergencyClaim(s.writeCtx(), claimant, poolID)
	metrics.GetCollector().RecordOperation("emergency_claim", timer.ElapsedMs(), err)
	if err != nil {
		return nil, err
	}

	metrics.GetCollector().RecordClaim(poolID, intToFloat(record.Assets), intToFloat(record.Fee))
	s.publishRecord(record)
	s.publishPoolState(poolID)
	return record, nil
}

// SetFeeConfig updates the performance fee configuration (operator only)
func (s *PoolService) SetFeeConfig(caller string, config types.FeeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keeper.SetFeeConfig(s.writeCtx(), caller, config)
}

// ============ Event publishing ============

func (s *PoolService) publishRecord(record *types.LedgerRecord) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastLedgerEvent(&websocket.LedgerEventMessage{
		RecordID:  record.RecordID,
		Kind:      record.Kind,
		PoolID:    record.PoolID,
		User:      record.User,
		Assets:    record.Assets.String(),
		Shares:    record.Shares.String(),
		Fee:       record.Fee.String(),
		Timestamp: record.Time,
	})
}

func (s *PoolService) publishPoolState(poolID string) {
	pool := s.keeper.GetPool(s.ctx, poolID)
	if pool == nil {
		return
	}

	metrics.GetCollector().RecordPoolShares(poolID, intToFloat(pool.TotalShares))
	if s.hub == nil {
		return
	}
	s.hub.UpdatePoolState(poolID, &websocket.PoolStateMessage{
		PoolID:          pool.PoolID,
		AssetDenom:      pool.AssetDenom,
		TotalShares:     pool.TotalShares.String(),
		Emergency:       pool.Emergency,
		WithdrawnAssets: pool.WithdrawnAssets.String(),
		Timestamp:       time.Now().UnixMilli(),
	})
}

// intToFloat converts a math.Int to float64 for metrics. Precision loss
// is acceptable there.
func intToFloat(i math.Int) float64 {
	f, err := strconv.ParseFloat(i.String(), 64)
	if err != nil {
		return 0
	}
	return f
}
