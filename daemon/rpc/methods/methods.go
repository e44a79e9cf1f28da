package methods

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/intentswaps/swapd/coordinator"
	"github.com/intentswaps/swapd/daemon/types"
	"github.com/intentswaps/swapd/model"
)

type Method interface {
	Name() string
	Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error)
}

type createOrder struct{}

func CreateOrder() Method {
	return &createOrder{}
}

func (m *createOrder) Name() string {
	return "createOrder"
}

func (m *createOrder) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestCreate
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	id, custodial, err := cfg.Coordinator.CreateOrder(context.Background(), caller, coordinator.CreateOrderRequest{
		FromAsset:  req.FromAsset,
		ToAsset:    req.ToAsset,
		FromAmount: req.FromAmount,
		ToAmount:   req.ToAmount,
		SecretHash: req.SecretHash,
		Timeout:    time.Duration(req.TimeoutSeconds) * time.Second,
		ReceiveAddresses: model.Addresses{
			Btc: req.BtcAddress,
			Evm: req.EvmAddress,
		},
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(types.ResponseCreate{OrderID: id, CustodialAddresses: custodial})
}

type confirmDeposit struct{}

func ConfirmDeposit() Method {
	return &confirmDeposit{}
}

func (m *confirmDeposit) Name() string {
	return "confirmDeposit"
}

func (m *confirmDeposit) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestConfirmDeposit
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	if err := cfg.Coordinator.ConfirmDeposit(context.Background(), caller, req.OrderID, req.Txid); err != nil {
		return nil, err
	}
	return json.Marshal("Deposit confirmed! Order is now visible to resolvers.")
}

type acceptOrder struct{}

func AcceptOrder() Method {
	return &acceptOrder{}
}

func (m *acceptOrder) Name() string {
	return "acceptOrder"
}

func (m *acceptOrder) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestAccept
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	custodial, err := cfg.Coordinator.AcceptOrder(context.Background(), caller, req.OrderID, model.Addresses{
		Btc: req.BtcAddress,
		Evm: req.EvmAddress,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(types.ResponseAccept{CustodialAddresses: custodial})
}

type confirmResolverDeposit struct{}

func ConfirmResolverDeposit() Method {
	return &confirmResolverDeposit{}
}

func (m *confirmResolverDeposit) Name() string {
	return "confirmResolverDeposit"
}

func (m *confirmResolverDeposit) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestConfirmDeposit
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	if err := cfg.Coordinator.ConfirmResolverDeposit(context.Background(), caller, req.OrderID, req.Txid); err != nil {
		return nil, err
	}
	return json.Marshal("Resolver deposit confirmed!")
}

type revealSecret struct{}

func RevealSecret() Method {
	return &revealSecret{}
}

func (m *revealSecret) Name() string {
	return "revealSecret"
}

func (m *revealSecret) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestRevealSecret
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	secret, err := hex.DecodeString(req.Secret)
	if err != nil {
		return nil, fmt.Errorf("secret must be hex encoded: %v", err)
	}
	if err := cfg.Coordinator.RevealSecret(context.Background(), caller, req.OrderID, secret); err != nil {
		return nil, err
	}
	return json.Marshal("Swap completed!")
}

type cancelOrder struct{}

func CancelOrder() Method {
	return &cancelOrder{}
}

func (m *cancelOrder) Name() string {
	return "cancelOrder"
}

func (m *cancelOrder) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestOrderID
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	if err := cfg.Coordinator.CancelOrder(context.Background(), caller, req.OrderID); err != nil {
		return nil, err
	}
	return json.Marshal("Order cancelled successfully.")
}

type processRefund struct{}

func ProcessRefund() Method {
	return &processRefund{}
}

func (m *processRefund) Name() string {
	return "processRefund"
}

func (m *processRefund) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestOrderID
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	if err := cfg.Coordinator.ProcessRefund(context.Background(), caller, req.OrderID); err != nil {
		return nil, err
	}
	return json.Marshal("Refund processed.")
}

type getOrder struct{}

func GetOrder() Method {
	return &getOrder{}
}

func (m *getOrder) Name() string {
	return "getOrder"
}

func (m *getOrder) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestOrderID
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	order, err := cfg.Coordinator.GetOrder(req.OrderID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(order)
}

type getPendingOrders struct{}

func GetPendingOrders() Method {
	return &getPendingOrders{}
}

func (m *getPendingOrders) Name() string {
	return "getPendingOrders"
}

func (m *getPendingOrders) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	orders, err := cfg.Coordinator.PendingOrders()
	if err != nil {
		return nil, err
	}
	return json.Marshal(orders)
}

type getMyOrders struct{}

func GetMyOrders() Method {
	return &getMyOrders{}
}

func (m *getMyOrders) Name() string {
	return "getMyOrders"
}

func (m *getMyOrders) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	orders, err := cfg.Coordinator.MyOrders(caller)
	if err != nil {
		return nil, err
	}
	return json.Marshal(orders)
}

type getExpiredOrders struct{}

func GetExpiredOrders() Method {
	return &getExpiredOrders{}
}

func (m *getExpiredOrders) Name() string {
	return "getExpiredOrders"
}

func (m *getExpiredOrders) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	orders, err := cfg.Coordinator.ExpiredOrders()
	if err != nil {
		return nil, err
	}
	return json.Marshal(orders)
}

type getOrdersByWallet struct{}

func GetOrdersByWallet() Method {
	return &getOrdersByWallet{}
}

func (m *getOrdersByWallet) Name() string {
	return "getOrdersByWallet"
}

func (m *getOrdersByWallet) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestOrdersByWallet
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	orders, err := cfg.Coordinator.OrdersByWallet(req.Address)
	if err != nil {
		return nil, err
	}
	return json.Marshal(orders)
}

type custodialAddresses struct{}

func CustodialAddresses() Method {
	return &custodialAddresses{}
}

func (m *custodialAddresses) Name() string {
	return "custodialAddresses"
}

func (m *custodialAddresses) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	return json.Marshal(cfg.Coordinator.CustodialAddresses())
}

type custodialBalance struct{}

func CustodialBalance() Method {
	return &custodialBalance{}
}

func (m *custodialBalance) Name() string {
	return "custodialBalance"
}

func (m *custodialBalance) Query(cfg *types.CoreConfig, caller string, params json.RawMessage) (json.RawMessage, error) {
	var req types.RequestBalance
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	balance, err := cfg.Coordinator.CustodialBalance(context.Background(), req.Asset)
	if err != nil {
		return nil, err
	}
	addrs := cfg.Coordinator.CustodialAddresses()
	return json.Marshal(types.ResponseBalance{
		Address: addrs.For(req.Asset.Family()),
		Balance: balance,
	})
}
