package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

// MsgServer defines the vaultpool MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// Deposit handles MsgDeposit
func (m *MsgServer) Deposit(ctx context.Context, msg *types.MsgDeposit) (*types.MsgDepositResponse, error) {
	amount, ok := math.NewIntFromString(msg.Amount)
	if !ok {
		return nil, types.ErrInvalidAmount
	}

	record, err := m.keeper.Deposit(ctx, msg.Depositor, msg.PoolID, amount, msg.Receiver)
	if err != nil {
		return nil, err
	}

	return &types.MsgDepositResponse{
		RecordID:       record.RecordID,
		SharesReceived: record.Shares.String(),
		CostBasisAdded: record.Assets.String(),
	}, nil
}

// Withdraw handles MsgWithdraw
func (m *MsgServer) Withdraw(ctx context.Context, msg *types.MsgWithdraw) (*types.MsgWithdrawResponse, error) {
	shares, ok := math.NewIntFromString(msg.Shares)
	if !ok {
		return nil, types.ErrInvalidAmount
	}

	record, err := m.keeper.Withdraw(ctx, msg.Withdrawer, msg.PoolID, shares, msg.Receiver)
	if err != nil {
		return nil, err
	}

	return &types.MsgWithdrawResponse{
		RecordID:       record.RecordID,
		AssetsReceived: record.Assets.String(),
		FeeCharged:     record.Fee.String(),
	}, nil
}

// TriggerEmergency handles MsgTriggerEmergency
func (m *MsgServer) TriggerEmergency(ctx context.Context, msg *types.MsgTriggerEmergency) (*types.MsgTriggerEmergencyResponse, error) {
	pool, err := m.keeper.TriggerEmergency(ctx, msg.Operator, msg.PoolID)
	if err != nil {
		return nil, err
	}

	return &types.MsgTriggerEmergencyResponse{
		WithdrawnAssets: pool.WithdrawnAssets.String(),
		FrozenShares:    pool.TotalShares.String(),
	}, nil
}

// EmergencyClaim handles MsgEmergencyClaim
func (m *MsgServer) EmergencyClaim(ctx context.Context, msg *types.MsgEmergencyClaim) (*types.MsgEmergencyClaimResponse, error) {
	record, err := m.keeper.EmergencyClaim(ctx, msg.Claimant, msg.PoolID)
	if err != nil {
		return nil, err
	}

	return &types.MsgEmergencyClaimResponse{
		RecordID:   record.RecordID,
		Payout:     record.Assets.Add(record.Fee).String(),
		FeeCharged: record.Fee.String(),
	}, nil
}

// SetFeeConfig handles MsgSetFeeConfig
func (m *MsgServer) SetFeeConfig(ctx context.Context, msg *types.MsgSetFeeConfig) (*types.MsgSetFeeConfigResponse, error) {
	rate, err := math.LegacyNewDecFromStr(msg.Rate)
	if err != nil {
		return nil, types.ErrInvalidFeeRate
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	config := types.FeeConfig{
		Recipient: msg.Recipient,
		Rate:      rate,
		Enabled:   msg.Enabled,
	}
	if err := m.keeper.SetFeeConfig(sdkCtx, msg.Operator, config); err != nil {
		return nil, err
	}
	return &types.MsgSetFeeConfigResponse{}, nil
}

// TransferOperator handles MsgTransferOperator
func (m *MsgServer) TransferOperator(ctx context.Context, msg *types.MsgTransferOperator) (*types.MsgTransferOperatorResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := m.keeper.TransferOperator(sdkCtx, msg.Operator, msg.NewOperator); err != nil {
		return nil, err
	}
	return &types.MsgTransferOperatorResponse{}, nil
}

// AcceptOperator handles MsgAcceptOperator
func (m *MsgServer) AcceptOperator(ctx context.Context, msg *types.MsgAcceptOperator) (*types.MsgAcceptOperatorResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := m.keeper.AcceptOperator(sdkCtx, msg.NewOperator); err != nil {
		return nil, err
	}
	return &types.MsgAcceptOperatorResponse{}, nil
}
