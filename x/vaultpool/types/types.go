package types

import (
	"time"

	"cosmossdk.io/math"
	"github.com/google/uuid"
)

// Module name and store key
const (
	ModuleName = "vaultpool"
	StoreKey   = ModuleName
)

// Record kinds for audit history
const (
	RecordKindDeposit    = "deposit"
	RecordKindWithdrawal = "withdrawal"
	RecordKindClaim      = "emergency_claim"
)

// MaxFeeRate caps the configurable performance fee at 50% of profit.
var MaxFeeRate = math.LegacyMustNewDecFromStr("0.50")

// MaxPoolIDLength bounds client-supplied pool ids.
const MaxPoolIDLength = 64

// ValidatePoolID checks a client-supplied pool id. Ids are embedded raw in
// store keys with ':' as the segment separator, so the charset is
// restricted to letters, digits, '-', '_' and '.'.
func ValidatePoolID(poolID string) error {
	if poolID == "" || len(poolID) > MaxPoolIDLength {
		return ErrInvalidPoolID
	}
	for _, c := range poolID {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return ErrInvalidPoolID
		}
	}
	return nil
}

// Pool is the per-external-vault aggregate ledger. TotalShares tracks the
// sum of all position shares while the pool is live; once Emergency is set
// both TotalShares and WithdrawnAssets are frozen and act as the
// denominator/numerator for every future claim.
type Pool struct {
	PoolID          string   `json:"pool_id"`
	AssetDenom      string   `json:"asset_denom"`
	Emergency       bool     `json:"emergency"`
	TotalShares     math.Int `json:"total_shares"`
	WithdrawnAssets math.Int `json:"withdrawn_assets"`
	CreatedAt       int64    `json:"created_at"`
	EmergencyAt     int64    `json:"emergency_at"`
	UpdatedAt       int64    `json:"updated_at"`
}

// NewPool creates a live pool with zeroed ledger totals
func NewPool(poolID, assetDenom string) *Pool {
	now := time.Now().Unix()
	return &Pool{
		PoolID:          poolID,
		AssetDenom:      assetDenom,
		Emergency:       false,
		TotalShares:     math.ZeroInt(),
		WithdrawnAssets: math.ZeroInt(),
		CreatedAt:       now,
		EmergencyAt:     0,
		UpdatedAt:       now,
	}
}

// UserPosition is a user's stake in a pool. DepositedCostBasis is the asset
// amount attributed to the currently held shares; it is reduced by the same
// fraction as shares on partial withdrawal so average cost per share is
// preserved.
type UserPosition struct {
	PoolID             string   `json:"pool_id"`
	Address            string   `json:"address"`
	Shares             math.Int `json:"shares"`
	DepositedCostBasis math.Int `json:"deposited_cost_basis"`
	UpdatedAt          int64    `json:"updated_at"`
}

// NewUserPosition creates an empty position record for a (pool, user) pair
func NewUserPosition(poolID, address string) *UserPosition {
	return &UserPosition{
		PoolID:             poolID,
		Address:            address,
		Shares:             math.ZeroInt(),
		DepositedCostBasis: math.ZeroInt(),
		UpdatedAt:          time.Now().Unix(),
	}
}

// CostBasisPortion returns floor(DepositedCostBasis * shares / Shares), the
// average-cost slice of the basis attributed to the given share amount.
func (p *UserPosition) CostBasisPortion(shares math.Int) math.Int {
	if p.Shares.IsZero() {
		return math.ZeroInt()
	}
	return p.DepositedCostBasis.Mul(shares).Quo(p.Shares)
}

// FeeConfig is the process-wide performance fee configuration. Rate is an
// 18-decimal fixed-point fraction of realized profit. No history is kept;
// each operation reads the current config at settlement time.
type FeeConfig struct {
	Recipient string         `json:"recipient"`
	Rate      math.LegacyDec `json:"rate"`
	Enabled   bool           `json:"enabled"`
	UpdatedAt int64          `json:"updated_at"`
}

// DefaultFeeConfig returns a disabled zero-rate fee configuration
func DefaultFeeConfig() FeeConfig {
	return FeeConfig{
		Recipient: "",
		Rate:      math.LegacyZeroDec(),
		Enabled:   false,
		UpdatedAt: 0,
	}
}

// Validate checks recipient presence and the fee rate bounds
func (c FeeConfig) Validate() error {
	if c.Rate.IsNil() || c.Rate.IsNegative() || c.Rate.GT(MaxFeeRate) {
		return ErrInvalidFeeRate
	}
	if c.Enabled && c.Recipient == "" {
		return ErrInvalidFeeRecipient
	}
	return nil
}

// ProfitFee returns floor(profit * rate) for the realized profit, or zero
// when the fee is disabled or there is no profit.
func (c FeeConfig) ProfitFee(realized, costBasis math.Int) math.Int {
	if !c.Enabled {
		return math.ZeroInt()
	}
	profit := realized.Sub(costBasis)
	if !profit.IsPositive() {
		return math.ZeroInt()
	}
	return c.Rate.MulInt(profit).TruncateInt()
}

// LedgerRecord is the audit record persisted for every state-mutating
// operation: deposits, withdrawals and emergency claims.
type LedgerRecord struct {
	RecordID string   `json:"record_id"`
	Kind     string   `json:"kind"`
	PoolID   string   `json:"pool_id"`
	User     string   `json:"user"`
	Assets   math.Int `json:"assets"`
	Shares   math.Int `json:"shares"`
	Fee      math.Int `json:"fee"`
	Time     int64    `json:"time"`
}

// NewLedgerRecord creates an audit record with a generated id
func NewLedgerRecord(kind, poolID, user string, assets, shares, fee math.Int) *LedgerRecord {
	return &LedgerRecord{
		RecordID: uuid.NewString(),
		Kind:     kind,
		PoolID:   poolID,
		User:     user,
		Assets:   assets,
		Shares:   shares,
		Fee:      fee,
		Time:     time.Now().Unix(),
	}
}
