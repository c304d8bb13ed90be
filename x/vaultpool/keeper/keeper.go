package keeper

import (
	"context"
	"encoding/json"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// Store key prefixes
var (
	PoolKeyPrefix       = []byte{0x01}
	PositionKeyPrefix   = []byte{0x02}
	FeeConfigKey        = []byte{0x03}
	OperatorKey         = []byte{0x04}
	PendingOperatorKey  = []byte{0x05}
	RecordKeyPrefix     = []byte{0x06}
	UserRecordKeyPrefix = []byte{0x07}
)

// VaultKeeper defines the expected interface for the external yield vault.
// The exchange rate is whatever the vault quotes; this module never
// second-guesses it. ExchangeAssetForShares takes custody of the assets
// already held by this module's account; ExchangeSharesForAssets must
// deliver the redeemed assets to the recipient module's bank account, so
// payouts are funded even when redemption exceeds cumulative deposits.
type VaultKeeper interface {
	ExchangeAssetForShares(ctx sdk.Context, poolID string, assets math.Int) (math.Int, error)
	ExchangeSharesForAssets(ctx sdk.Context, poolID string, shares math.Int, recipientModule string) (math.Int, error)
	PreviewSharesToAssets(ctx sdk.Context, poolID string, shares math.Int) (math.Int, error)
	ShareBalance(ctx sdk.Context, poolID string) math.Int
	AssetDenom(ctx sdk.Context, poolID string) string
}

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
}

// Keeper manages the vaultpool module state
type Keeper struct {
	cdc         codec.BinaryCodec
	storeKey    storetypes.StoreKey
	vaultKeeper VaultKeeper
	bankKeeper  BankKeeper
	logger      log.Logger
	authority   string
}

// NewKeeper creates a new vaultpool keeper. The authority acts as the
// operator until the role is handed over on-store.
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	vaultKeeper VaultKeeper,
	bankKeeper BankKeeper,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:         cdc,
		storeKey:    storeKey,
		vaultKeeper: vaultKeeper,
		bankKeeper:  bankKeeper,
		authority:   authority,
		logger:      logger.With("module", "x/vaultpool"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// ============ Pool Operations ============

func poolKey(poolID string) []byte {
	return append(PoolKeyPrefix, []byte(poolID)...)
}

// SetPool saves a pool to the store
func (k *Keeper) SetPool(ctx sdk.Context, pool *types.Pool) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(pool)
	store.Set(poolKey(pool.PoolID), bz)
}

// GetPool retrieves a pool from the store, nil if it was never created
func (k *Keeper) GetPool(ctx sdk.Context, poolID string) *types.Pool {
	store := k.GetStore(ctx)
	bz := store.Get(poolKey(poolID))
	if bz == nil {
		return nil
	}
	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return nil
	}
	return &pool
}

// GetAllPools returns all pools
func (k *Keeper) GetAllPools(ctx sdk.Context) []*types.Pool {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolKeyPrefix)
	defer iterator.Close()

	var pools []*types.Pool
	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			continue
		}
		pools = append(pools, &pool)
	}
	return pools
}

// ============ Position Operations ============

func positionKey(poolID, address string) []byte {
	return append(PositionKeyPrefix, []byte(poolID+":"+address)...)
}

// SetPosition saves a user position to the store. Zeroed positions are
// written back rather than deleted so a later lookup still returns the
// tombstoned record.
func (k *Keeper) SetPosition(ctx sdk.Context, position *types.UserPosition) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(position)
	store.Set(positionKey(position.PoolID, position.Address), bz)
}

// GetPosition retrieves a user position. A (pool, user) pair that never
// deposited yields the implicit zero record, not "not found".
func (k *Keeper) GetPosition(ctx sdk.Context, poolID, address string) *types.UserPosition {
	store := k.GetStore(ctx)
	bz := store.Get(positionKey(poolID, address))
	if bz == nil {
		return types.NewUserPosition(poolID, address)
	}
	var position types.UserPosition
	if err := json.Unmarshal(bz, &position); err != nil {
		return types.NewUserPosition(poolID, address)
	}
	return &position
}

// GetPoolPositions returns every recorded position in a pool, tombstones
// included
func (k *Keeper) GetPoolPositions(ctx sdk.Context, poolID string) []*types.UserPosition {
	store := k.GetStore(ctx)
	prefix := append(PositionKeyPrefix, []byte(poolID+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var positions []*types.UserPosition
	for ; iterator.Valid(); iterator.Next() {
		var position types.UserPosition
		if err := json.Unmarshal(iterator.Value(), &position); err != nil {
			continue
		}
		positions = append(positions, &position)
	}
	return positions
}

// ============ Record Operations ============

func recordKey(recordID string) []byte {
	return append(RecordKeyPrefix, []byte(recordID)...)
}

func userRecordKey(user, recordID string) []byte {
	return append(UserRecordKeyPrefix, []byte(user+":"+recordID)...)
}

// SetRecord saves a ledger record and indexes it by user
func (k *Keeper) SetRecord(ctx sdk.Context, record *types.LedgerRecord) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(record)
	store.Set(recordKey(record.RecordID), bz)
	store.Set(userRecordKey(record.User, record.RecordID), []byte(record.RecordID))
}

// GetRecord retrieves a ledger record by id
func (k *Keeper) GetRecord(ctx sdk.Context, recordID string) *types.LedgerRecord {
	store := k.GetStore(ctx)
	bz := store.Get(recordKey(recordID))
	if bz == nil {
		return nil
	}
	var record types.LedgerRecord
	if err := json.Unmarshal(bz, &record); err != nil {
		return nil
	}
	return &record
}

// GetUserRecords returns all ledger records for a user, optionally filtered
// by record kind
func (k *Keeper) GetUserRecords(ctx sdk.Context, user, kind string) []*types.LedgerRecord {
	store := k.GetStore(ctx)
	prefix := append(UserRecordKeyPrefix, []byte(user+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var records []*types.LedgerRecord
	for ; iterator.Valid(); iterator.Next() {
		record := k.GetRecord(ctx, string(iterator.Value()))
		if record == nil {
			continue
		}
		if kind != "" && record.Kind != kind {
			continue
		}
		records = append(records, record)
	}
	return records
}
