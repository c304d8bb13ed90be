package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgDeposit          = "deposit"
	TypeMsgWithdraw         = "withdraw"
	TypeMsgTriggerEmergency = "trigger_emergency"
	TypeMsgEmergencyClaim   = "emergency_claim"
	TypeMsgSetFeeConfig     = "set_fee_config"
	TypeMsgTransferOperator = "transfer_operator"
	TypeMsgAcceptOperator   = "accept_operator"
)

// MsgDeposit defines the Deposit message
type MsgDeposit struct {
	Depositor string `json:"depositor"`
	PoolID    string `json:"pool_id"`
	Amount    string `json:"amount"`
	Receiver  string `json:"receiver,omitempty"`
}

// Route implements sdk.Msg
func (msg MsgDeposit) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgDeposit) Type() string { return TypeMsgDeposit }

// ValidateBasic implements sdk.Msg
func (msg MsgDeposit) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Depositor); err != nil {
		return err
	}
	if err := ValidatePoolID(msg.PoolID); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgDeposit) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Depositor)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgDeposit) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgDeposit) Reset() { *msg = MsgDeposit{} }

// String implements proto.Message
func (msg MsgDeposit) String() string {
	return fmt.Sprintf("MsgDeposit{Depositor: %s, PoolID: %s, Amount: %s}", msg.Depositor, msg.PoolID, msg.Amount)
}

// MsgDepositResponse defines the Deposit response
type MsgDepositResponse struct {
	RecordID       string `json:"record_id"`
	SharesReceived string `json:"shares_received"`
	CostBasisAdded string `json:"cost_basis_added"`
}

// MsgWithdraw defines the Withdraw message
type MsgWithdraw struct {
	Withdrawer string `json:"withdrawer"`
	PoolID     string `json:"pool_id"`
	Shares     string `json:"shares"`
	Receiver   string `json:"receiver,omitempty"`
}

// Route implements sdk.Msg
func (msg MsgWithdraw) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgWithdraw) Type() string { return TypeMsgWithdraw }

// ValidateBasic implements sdk.Msg
func (msg MsgWithdraw) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Withdrawer); err != nil {
		return err
	}
	if err := ValidatePoolID(msg.PoolID); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgWithdraw) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Withdrawer)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgWithdraw) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgWithdraw) Reset() { *msg = MsgWithdraw{} }

// String implements proto.Message
func (msg MsgWithdraw) String() string {
	return fmt.Sprintf("MsgWithdraw{Withdrawer: %s, PoolID: %s, Shares: %s}", msg.Withdrawer, msg.PoolID, msg.Shares)
}

// MsgWithdrawResponse defines the Withdraw response
type MsgWithdrawResponse struct {
	RecordID       string `json:"record_id"`
	AssetsReceived string `json:"assets_received"`
	FeeCharged     string `json:"fee_charged"`
}

// MsgTriggerEmergency defines the TriggerEmergency message (operator only)
type MsgTriggerEmergency struct {
	Operator string `json:"operator"`
	PoolID   string `json:"pool_id"`
}

// Route implements sdk.Msg
func (msg MsgTriggerEmergency) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgTriggerEmergency) Type() string { return TypeMsgTriggerEmergency }

// ValidateBasic implements sdk.Msg
func (msg MsgTriggerEmergency) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Operator); err != nil {
		return err
	}
	if err := ValidatePoolID(msg.PoolID); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgTriggerEmergency) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Operator)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgTriggerEmergency) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgTriggerEmergency) Reset() { *msg = MsgTriggerEmergency{} }

// String implements proto.Message
func (msg MsgTriggerEmergency) String() string {
	return fmt.Sprintf("MsgTriggerEmergency{Operator: %s, PoolID: %s}", msg.Operator, msg.PoolID)
}

// MsgTriggerEmergencyResponse defines the TriggerEmergency response
type MsgTriggerEmergencyResponse struct {
	WithdrawnAssets string `json:"withdrawn_assets"`
	FrozenShares    string `json:"frozen_shares"`
}

// MsgEmergencyClaim defines the EmergencyClaim message
type MsgEmergencyClaim struct {
	Claimant string `json:"claimant"`
	PoolID   string `json:"pool_id"`
}

// Route implements sdk.Msg
func (msg MsgEmergencyClaim) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgEmergencyClaim) Type() string { return TypeMsgEmergencyClaim }

// ValidateBasic implements sdk.Msg
func (msg MsgEmergencyClaim) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Claimant); err != nil {
		return err
	}
	if err := ValidatePoolID(msg.PoolID); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgEmergencyClaim) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Claimant)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgEmergencyClaim) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgEmergencyClaim) Reset() { *msg = MsgEmergencyClaim{} }

// String implements proto.Message
func (msg MsgEmergencyClaim) String() string {
	return fmt.Sprintf("MsgEmergencyClaim{Claimant: %s, PoolID: %s}", msg.Claimant, msg.PoolID)
}

// MsgEmergencyClaimResponse defines the EmergencyClaim response
type MsgEmergencyClaimResponse struct {
	RecordID   string `json:"record_id"`
	Payout     string `json:"payout"`
	FeeCharged string `json:"fee_charged"`
}

// MsgSetFeeConfig defines the SetFeeConfig message (operator only)
type MsgSetFeeConfig struct {
	Operator  string `json:"operator"`
	Recipient string `json:"recipient"`
	Rate      string `json:"rate"`
	Enabled   bool   `json:"enabled"`
}

// Route implements sdk.Msg
func (msg MsgSetFeeConfig) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetFeeConfig) Type() string { return TypeMsgSetFeeConfig }

// ValidateBasic implements sdk.Msg
func (msg MsgSetFeeConfig) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Operator); err != nil {
		return err
	}
	if msg.Enabled && msg.Recipient == "" {
		return ErrInvalidFeeRecipient
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetFeeConfig) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Operator)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSetFeeConfig) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetFeeConfig) Reset() { *msg = MsgSetFeeConfig{} }

// String implements proto.Message
func (msg MsgSetFeeConfig) String() string {
	return fmt.Sprintf("MsgSetFeeConfig{Recipient: %s, Rate: %s, Enabled: %t}", msg.Recipient, msg.Rate, msg.Enabled)
}

// MsgSetFeeConfigResponse defines the SetFeeConfig response
type MsgSetFeeConfigResponse struct{}

// MsgTransferOperator defines the first step of the operator handover
type MsgTransferOperator struct {
	Operator    string `json:"operator"`
	NewOperator string `json:"new_operator"`
}

// Route implements sdk.Msg
func (msg MsgTransferOperator) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgTransferOperator) Type() string { return TypeMsgTransferOperator }

// ValidateBasic implements sdk.Msg
func (msg MsgTransferOperator) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Operator); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.NewOperator); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgTransferOperator) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Operator)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgTransferOperator) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgTransferOperator) Reset() { *msg = MsgTransferOperator{} }

// String implements proto.Message
func (msg MsgTransferOperator) String() string {
	return fmt.Sprintf("MsgTransferOperator{Operator: %s, NewOperator: %s}", msg.Operator, msg.NewOperator)
}

// MsgTransferOperatorResponse defines the TransferOperator response
type MsgTransferOperatorResponse struct{}

// MsgAcceptOperator defines the second step of the operator handover
type MsgAcceptOperator struct {
	NewOperator string `json:"new_operator"`
}

// Route implements sdk.Msg
func (msg MsgAcceptOperator) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgAcceptOperator) Type() string { return TypeMsgAcceptOperator }

// ValidateBasic implements sdk.Msg
func (msg MsgAcceptOperator) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.NewOperator); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgAcceptOperator) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.NewOperator)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgAcceptOperator) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgAcceptOperator) Reset() { *msg = MsgAcceptOperator{} }

// String implements proto.Message
func (msg MsgAcceptOperator) String() string {
	return fmt.Sprintf("MsgAcceptOperator{NewOperator: %s}", msg.NewOperator)
}

// MsgAcceptOperatorResponse defines the AcceptOperator response
type MsgAcceptOperatorResponse struct{}
