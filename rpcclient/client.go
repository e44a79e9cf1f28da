// Package rpcclient is a thin typed client for the daemon's JSON-RPC surface,
// used by tooling and tests that drive a running coordinator.
package rpcclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	jsonrpc "github.com/intentswaps/swapd/daemon/rpc"
	"github.com/intentswaps/swapd/daemon/types"
)

type Client interface {
	CreateOrder(data types.RequestCreate) (json.RawMessage, error)
	ConfirmDeposit(data types.RequestConfirmDeposit) (json.RawMessage, error)
	AcceptOrder(data types.RequestAccept) (json.RawMessage, error)
	ConfirmResolverDeposit(data types.RequestConfirmDeposit) (json.RawMessage, error)
	RevealSecret(data types.RequestRevealSecret) (json.RawMessage, error)
	CancelOrder(data types.RequestOrderID) (json.RawMessage, error)
	ProcessRefund(data types.RequestOrderID) (json.RawMessage, error)
	GetOrder(data types.RequestOrderID) (json.RawMessage, error)
	GetPendingOrders() (json.RawMessage, error)
	GetMyOrders() (json.RawMessage, error)
	GetExpiredOrders() (json.RawMessage, error)
	GetOrdersByWallet(data types.RequestOrdersByWallet) (json.RawMessage, error)
	CustodialAddresses() (json.RawMessage, error)
	CustodialBalance(data types.RequestBalance) (json.RawMessage, error)
}

type client struct {
	User      string
	Pass      string
	Protocol  string
	RPCServer string
}

func NewClient(userName string, password string, protocol string, rpcServer string) Client {
	return &client{
		User:      userName,
		Pass:      password,
		Protocol:  protocol,
		RPCServer: rpcServer,
	}
}

// SendPostRequest sends the marshalled JSON-RPC command using HTTP-POST mode
// to the configured server. It unmarshals the reply as a JSON-RPC response and
// returns either the result field or the error field depending on whether or
// not there is an error.
func (c *client) SendPostRequest(method string, jsonData []byte) (json.RawMessage, error) {
	payload := jsonrpc.Request{
		Version: "2.0",
		Method:  method,
		Params:  json.RawMessage(jsonData),
	}
	marshalledJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := c.Protocol + "://" + c.RPCServer
	bodyReader := bytes.NewReader(marshalledJSON)
	httpRequest, err := http.NewRequest("POST", url, bodyReader)
	if err != nil {
		return nil, err
	}
	httpRequest.Close = true
	httpRequest.Header.Set("Content-Type", "application/json")

	// Configure basic access authorization.
	httpRequest.SetBasicAuth(c.User, c.Pass)

	httpResponse, err := http.DefaultClient.Do(httpRequest)
	if err != nil {
		return nil, err
	}

	respBytes, err := io.ReadAll(httpResponse.Body)
	httpResponse.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("error reading json reply: %v", err)
	}

	// Handle unsuccessful HTTP responses
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		if len(respBytes) == 0 {
			return nil, fmt.Errorf("%d %s", httpResponse.StatusCode,
				http.StatusText(httpResponse.StatusCode))
		}
		return nil, fmt.Errorf("%s", respBytes)
	}

	var resp jsonrpc.Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%s: %s", resp.Error.Message, resp.Error.Data)
	}
	return resp.Result, nil
}

func (c *client) call(method string, data interface{}) (json.RawMessage, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	resp, err := c.SendPostRequest(method, jsonData)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (c *client) CreateOrder(data types.RequestCreate) (json.RawMessage, error) {
	return c.call("createOrder", data)
}

func (c *client) ConfirmDeposit(data types.RequestConfirmDeposit) (json.RawMessage, error) {
	return c.call("confirmDeposit", data)
}

func (c *client) AcceptOrder(data types.RequestAccept) (json.RawMessage, error) {
	return c.call("acceptOrder", data)
}

func (c *client) ConfirmResolverDeposit(data types.RequestConfirmDeposit) (json.RawMessage, error) {
	return c.call("confirmResolverDeposit", data)
}

func (c *client) RevealSecret(data types.RequestRevealSecret) (json.RawMessage, error) {
	return c.call("revealSecret", data)
}

func (c *client) CancelOrder(data types.RequestOrderID) (json.RawMessage, error) {
	return c.call("cancelOrder", data)
}

func (c *client) ProcessRefund(data types.RequestOrderID) (json.RawMessage, error) {
	return c.call("processRefund", data)
}

func (c *client) GetOrder(data types.RequestOrderID) (json.RawMessage, error) {
	return c.call("getOrder", data)
}

func (c *client) GetPendingOrders() (json.RawMessage, error) {
	return c.call("getPendingOrders", struct{}{})
}

func (c *client) GetMyOrders() (json.RawMessage, error) {
	return c.call("getMyOrders", struct{}{})
}

func (c *client) GetExpiredOrders() (json.RawMessage, error) {
	return c.call("getExpiredOrders", struct{}{})
}

func (c *client) GetOrdersByWallet(data types.RequestOrdersByWallet) (json.RawMessage, error) {
	return c.call("getOrdersByWallet", data)
}

func (c *client) CustodialAddresses() (json.RawMessage, error) {
	return c.call("custodialAddresses", struct{}{})
}

func (c *client) CustodialBalance(data types.RequestBalance) (json.RawMessage, error) {
	return c.call("custodialBalance", data)
}
