package chain

import "context"

// Relay submits pre-signed transactions through the JSON-RPC client and
// reports their mined outcome
type Relay struct {
	client *Client
}

// NewRelay creates a new relay submitter
func NewRelay(client *Client) *Relay {
	return &Relay{client: client}
}

// Submit broadcasts a signed transaction and returns its hash
func (r *Relay) Submit(ctx context.Context, signedTx string) (string, error) {
	return r.client.SendRawTransaction(ctx, signedTx)
}

// Confirm waits for the transaction receipt and reports whether it
// executed without reverting
func (r *Relay) Confirm(ctx context.Context, txHash string) (bool, error) {
	receipt, err := r.client.WaitForReceipt(ctx, txHash)
	if err != nil {
		return false, err
	}
	return receipt.Succeeded(), nil
}
