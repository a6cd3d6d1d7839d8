// Package custody talks to the external custody service that actually holds
// asset accounts. The ledger never moves funds itself; it instructs custody
// and records the result.
package custody

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vaultledger/messaging"
	"vaultledger/service"

	log "github.com/sirupsen/logrus"
)

// Client implements the CustodyClient interface over NATS request/reply
type Client struct {
	nats    *messaging.NATSClient
	subject string
	timeout time.Duration
}

// NewClient creates a new custody client
func NewClient(natsClient *messaging.NATSClient, subject string, timeout time.Duration) *Client {
	return &Client{
		nats:    natsClient,
		subject: subject,
		timeout: timeout,
	}
}

type transferMessage struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	AssetID     string `json:"asset_id"`
	Amount      int64  `json:"amount"`
	Authority   string `json:"authority"`
}

type transferResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Transfer asks the custody service to move funds between accounts and waits
// for its confirmation. A rejected or timed-out transfer returns an error and
// the caller's transaction must not commit.
func (c *Client) Transfer(ctx context.Context, req service.TransferRequest) error {
	payload, err := json.Marshal(transferMessage{
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		AssetID:     req.AssetID,
		Amount:      req.Amount,
		Authority:   req.Authority,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.nats.Request(ctx, c.subject, payload)
	if err != nil {
		return fmt.Errorf("custody request failed: %w", err)
	}

	var resp transferResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to decode custody response: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("custody transfer rejected: %s", resp.Error)
	}

	log.WithFields(log.Fields{
		"fromAccount": req.FromAccount,
		"toAccount":   req.ToAccount,
		"assetId":     req.AssetID,
		"amount":      req.Amount,
	}).Debug("Custody transfer completed")

	return nil
}

// VaultAuthority returns the authority name under which the custody service
// holds a vault's pooled account. The name is derived from the asset and is
// never issued to an external party.
func (c *Client) VaultAuthority(assetID string) string {
	return "vault:" + assetID
}
