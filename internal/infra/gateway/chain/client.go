package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	requestTimeout     = 30 * time.Second
	receiptPollDelay   = 2 * time.Second
	receiptPollTimeout = 90 * time.Second
)

// Client is a JSON-RPC client for the EVM test network hosting the group
// contracts
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

// NewClient creates a new JSON-RPC client
func NewClient(rpcURL string) *Client {
	return &Client{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// doRequest performs a JSON-RPC request
func (c *Client) doRequest(ctx context.Context, req *RPCRequest) (*RPCResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			RetryAfter: time.Minute,
			Message:    "RPC provider rate limit exceeded",
		}
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return &rpcResp, nil
}

// Call performs an eth_call against a contract and returns the raw hex
// return payload. A non-empty from address makes participant-gated reads
// possible.
func (c *Client) Call(ctx context.Context, from, to, data string) (string, error) {
	req := &RPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_call",
		Params:  []any{callParams{From: from, To: to, Data: data}, "latest"},
	}

	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return "", fmt.Errorf("eth_call failed: %w", err)
	}

	var result string
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return "", fmt.Errorf("failed to parse eth_call result: %w", err)
	}

	return result, nil
}

// SendRawTransaction broadcasts a pre-signed transaction and returns its hash
func (c *Client) SendRawTransaction(ctx context.Context, signedTx string) (string, error) {
	req := &RPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_sendRawTransaction",
		Params:  []any{signedTx},
	}

	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return "", fmt.Errorf("eth_sendRawTransaction failed: %w", err)
	}

	var hash string
	if err := json.Unmarshal(resp.Result, &hash); err != nil {
		return "", fmt.Errorf("failed to parse transaction hash: %w", err)
	}

	return hash, nil
}

// WaitForReceipt polls eth_getTransactionReceipt until the transaction is
// mined or the poll window elapses
func (c *Client) WaitForReceipt(ctx context.Context, txHash string) (*TransactionReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, receiptPollTimeout)
	defer cancel()

	ticker := time.NewTicker(receiptPollDelay)
	defer ticker.Stop()

	for {
		receipt, err := c.transactionReceipt(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for receipt of %s: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// transactionReceipt fetches a receipt; nil means the transaction is not
// mined yet
func (c *Client) transactionReceipt(ctx context.Context, txHash string) (*TransactionReceipt, error) {
	req := &RPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_getTransactionReceipt",
		Params:  []any{txHash},
	}

	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("eth_getTransactionReceipt failed: %w", err)
	}

	if string(resp.Result) == "null" {
		return nil, nil
	}

	var receipt TransactionReceipt
	if err := json.Unmarshal(resp.Result, &receipt); err != nil {
		return nil, fmt.Errorf("failed to parse receipt: %w", err)
	}

	return &receipt, nil
}
