package vaultpool

import (
	"encoding/json"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"

	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/keeper"
	"github.com/freQuensy23-coder/morphoEmergency/x/vaultpool/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ appmodule.AppModule   = AppModule{}
)

// AppModuleBasic defines the basic application module for vaultpool
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgDeposit{}, "vaultpool/MsgDeposit", nil)
	cdc.RegisterConcrete(&types.MsgWithdraw{}, "vaultpool/MsgWithdraw", nil)
	cdc.RegisterConcrete(&types.MsgTriggerEmergency{}, "vaultpool/MsgTriggerEmergency", nil)
	cdc.RegisterConcrete(&types.MsgEmergencyClaim{}, "vaultpool/MsgEmergencyClaim", nil)
	cdc.RegisterConcrete(&types.MsgSetFeeConfig{}, "vaultpool/MsgSetFeeConfig", nil)
	cdc.RegisterConcrete(&types.MsgTransferOperator{}, "vaultpool/MsgTransferOperator", nil)
	cdc.RegisterConcrete(&types.MsgAcceptOperator{}, "vaultpool/MsgAcceptOperator", nil)
}

// RegisterInterfaces registers the module's interface types
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&types.MsgDeposit{},
		&types.MsgWithdraw{},
		&types.MsgTriggerEmergency{},
		&types.MsgEmergencyClaim{},
		&types.MsgSetFeeConfig{},
		&types.MsgTransferOperator{},
		&types.MsgAcceptOperator{},
	)
}

// DefaultGenesis returns default genesis state as raw bytes
func (AppModuleBasic) DefaultGenesis(cdc codec.JSONCodec) json.RawMessage {
	return nil
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(cdc codec.JSONCodec, config client.TxEncodingConfig, bz json.RawMessage) error {
	return nil
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the module
func (AppModuleBasic) RegisterGRPCGatewayRoutes(clientCtx client.Context, mux *runtime.ServeMux) {
}

// AppModule implements an application module for the vaultpool module
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// RegisterServices registers module services
func (am AppModule) RegisterServices(cfg module.Configurator) {
	_ = keeper.NewMsgServerImpl(am.keeper)
	_ = keeper.NewQueryServerImpl(am.keeper)
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}
