package chain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// RPCRequest represents a JSON-RPC 2.0 request
type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// RPCResponse represents a JSON-RPC 2.0 response
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error object
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// RateLimitError indicates the RPC provider rejected the request for rate limiting
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return e.Message
}

// callParams is the object form of eth_call parameters
type callParams struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// TransactionReceipt is the subset of an EVM receipt the relayer needs
type TransactionReceipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     string `json:"blockNumber"`
	Status          string `json:"status"` // 0x1 = success, 0x0 = reverted
}

// Succeeded reports whether the transaction executed without reverting
func (r *TransactionReceipt) Succeeded() bool {
	return r.Status == "0x1"
}

// Block returns the receipt's block number as an integer
func (r *TransactionReceipt) Block() (*big.Int, error) {
	return parseHexUint(r.BlockNumber)
}

// parseHexUint parses a 0x-prefixed hex quantity into a big.Int
func parseHexUint(s string) (*big.Int, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, fmt.Errorf("empty hex quantity")
	}
	n := new(big.Int)
	if _, ok := n.SetString(s, 16); !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return n, nil
}
