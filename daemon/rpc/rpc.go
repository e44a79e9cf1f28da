// Package rpc exposes the coordinator over a JSON-RPC 2.0 surface. Callers
// authenticate with basic auth, the authenticated account name is the identity
// the coordinator authorizes operations against.
package rpc

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/intentswaps/swapd/daemon/rpc/methods"
	"github.com/intentswaps/swapd/daemon/types"
	"go.uber.org/zap"
)

type RPC interface {
	AddCommand(cmd methods.Method)
	Run(addr string) error
}

type credential struct {
	authsha [sha256.Size]byte
	caller  string
}

type rpc struct {
	commands    map[string]methods.Method
	credentials []credential
	coreConfig  types.CoreConfig
}

// Request defines a JSON-RPC 2.0 request object.
type Request struct {
	Version string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response defines a JSON-RPC 2.0 response object.
type Response struct {
	Version string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error defines a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

// Error codes
const (
	ErrorCodeParseError        = -32700
	ErrorMessageParseError     = "Parse error"
	ErrorCodeMethodNotFound    = -32601
	ErrorMessageMethodNotFound = "Method not found"
	ErrorCodeInternalError     = -32603
	ErrorMessageInternalError  = "Internal error"
)

func NewResponse(id interface{}, result json.RawMessage, err *Error) Response {
	return Response{
		Version: "2.0",
		ID:      id,
		Result:  result,
		Error:   err,
	}
}

func NewError(code int, message string, data string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewRpcServer builds the server. users maps account names to passwords, each
// account is an independent caller identity.
func NewRpcServer(coordinatorConfig types.CoreConfig, users map[string]string) RPC {
	if len(users) == 0 {
		panic("at least one RPC user must be specified")
	}

	credentials := make([]credential, 0, len(users))
	for name, password := range users {
		login := name + ":" + password
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
		credentials = append(credentials, credential{
			authsha: sha256.Sum256([]byte(auth)),
			caller:  name,
		})
	}

	return &rpc{
		commands:    make(map[string]methods.Method),
		credentials: credentials,
		coreConfig:  coordinatorConfig,
	}
}

func (r *rpc) AddCommand(cmd methods.Method) {
	r.commands[cmd.Name()] = cmd
}

func (r *rpc) handleJSONRPC(ctx *gin.Context) {
	req := Request{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, NewResponse(req.ID, nil, NewError(ErrorCodeParseError, ErrorMessageParseError, err.Error())))
		return
	}

	cmd, ok := r.commands[req.Method]
	if !ok {
		ctx.JSON(http.StatusNotFound, NewResponse(req.ID, nil, NewError(ErrorCodeMethodNotFound, ErrorMessageMethodNotFound, "")))
		return
	}

	caller := ctx.GetString("caller")
	result, err := cmd.Query(&r.coreConfig, caller, req.Params)
	if err != nil {
		r.coreConfig.Logger.Info("method failed", zap.String("method", req.Method), zap.String("caller", caller), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, NewResponse(req.ID, nil, NewError(ErrorCodeInternalError, ErrorMessageInternalError, err.Error())))
		return
	}

	ctx.JSON(http.StatusOK, NewResponse(req.ID, result, nil))
}

func (r *rpc) authenticateUser(ctx *gin.Context) {
	authhdr := ctx.GetHeader("Authorization")
	if len(authhdr) <= 0 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized Invalid credentials"})
		return
	}
	authsha := sha256.Sum256([]byte(authhdr))
	for _, cred := range r.credentials {
		if subtle.ConstantTimeCompare(authsha[:], cred.authsha[:]) == 1 {
			ctx.Set("caller", cred.caller)
			return
		}
	}
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized Invalid credentials"})
}

func (r *rpc) Run(addr string) error {
	r.AddCommand(methods.CreateOrder())
	r.AddCommand(methods.ConfirmDeposit())
	r.AddCommand(methods.AcceptOrder())
	r.AddCommand(methods.ConfirmResolverDeposit())
	r.AddCommand(methods.RevealSecret())
	r.AddCommand(methods.CancelOrder())
	r.AddCommand(methods.ProcessRefund())
	r.AddCommand(methods.GetOrder())
	r.AddCommand(methods.GetPendingOrders())
	r.AddCommand(methods.GetMyOrders())
	r.AddCommand(methods.GetExpiredOrders())
	r.AddCommand(methods.GetOrdersByWallet())
	r.AddCommand(methods.CustodialAddresses())
	r.AddCommand(methods.CustodialBalance())

	s := gin.Default()
	s.Use(cors.Default())

	authRoutes := s.Group("/")
	authRoutes.Use(r.authenticateUser)
	authRoutes.POST("/", r.handleJSONRPC)

	r.coreConfig.Logger.Info(fmt.Sprintf("listening on %v", addr))
	return s.Run(addr)
}
