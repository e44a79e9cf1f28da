package types

import (
	"github.com/intentswaps/swapd/coordinator"
	"github.com/intentswaps/swapd/model"
	"go.uber.org/zap"
)

type CoreConfig struct {
	Coordinator *coordinator.Coordinator
	Logger      *zap.Logger
}

type RequestCreate struct {
	FromAsset      model.Asset `json:"fromAsset" binding:"required"`
	ToAsset        model.Asset `json:"toAsset" binding:"required"`
	FromAmount     uint64      `json:"fromAmount" binding:"required"`
	ToAmount       uint64      `json:"toAmount" binding:"required"`
	SecretHash     string      `json:"secretHash" binding:"required"`
	TimeoutSeconds uint64      `json:"timeoutSeconds" binding:"required"`
	BtcAddress     string      `json:"btcAddress"`
	EvmAddress     string      `json:"evmAddress"`
}

type ResponseCreate struct {
	OrderID            uint            `json:"orderId"`
	CustodialAddresses model.Addresses `json:"custodialAddresses"`
}

type RequestConfirmDeposit struct {
	OrderID uint   `json:"orderId" binding:"required"`
	Txid    string `json:"txid" binding:"required"`
}

type RequestAccept struct {
	OrderID    uint   `json:"orderId" binding:"required"`
	BtcAddress string `json:"btcAddress"`
	EvmAddress string `json:"evmAddress"`
}

type ResponseAccept struct {
	CustodialAddresses model.Addresses `json:"custodialAddresses"`
}

type RequestRevealSecret struct {
	OrderID uint   `json:"orderId" binding:"required"`
	Secret  string `json:"secret" binding:"required"`
}

type RequestOrderID struct {
	OrderID uint `json:"orderId" binding:"required"`
}

type RequestOrdersByWallet struct {
	Address string `json:"address" binding:"required"`
}

type RequestBalance struct {
	Asset model.Asset `json:"asset" binding:"required"`
}

type ResponseBalance struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}
