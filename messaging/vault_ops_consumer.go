package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vaultledger/models"
	"vaultledger/service"

	log "github.com/sirupsen/logrus"
)

// Subjects for the synchronous vault operation API
const (
	SubjectDeposit  = "vault.op.deposit"
	SubjectWithdraw = "vault.op.withdraw"
	SubjectBalance  = "vault.op.balance"

	opsQueueGroup = "vaultledger-ops"
)

// IdentityVerifier checks an owner's identity token and returns the owner
// identity it asserts
type IdentityVerifier interface {
	Verify(token string) (string, error)
}

// DepositRequest asks the ledger to move funds from the owner's account into
// a vault
type DepositRequest struct {
	Token        string `json:"token"`
	AssetID      string `json:"asset_id"`
	OwnerAccount string `json:"owner_account"`
	Amount       int64  `json:"amount"`
	RequestID    string `json:"request_id,omitempty"`
}

// WithdrawRequest asks the ledger to move funds from a vault back to the
// owner's account
type WithdrawRequest struct {
	Token        string `json:"token"`
	AssetID      string `json:"asset_id"`
	OwnerAccount string `json:"owner_account"`
	Amount       int64  `json:"amount"`
	RequestID    string `json:"request_id,omitempty"`
}

// BalanceRequest asks for the owner's current balance including interest
// accrued up to now
type BalanceRequest struct {
	Token   string `json:"token"`
	AssetID string `json:"asset_id"`
}

// ErrorInfo carries a machine-readable failure kind plus a human-readable
// message
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// OperationResponse is the reply envelope for every vault operation
type OperationResponse struct {
	OK     bool            `json:"ok"`
	Error  *ErrorInfo      `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// VaultOpsConsumer serves the synchronous vault operation API over NATS
// request/reply
type VaultOpsConsumer struct {
	natsClient *NATSClient
	verifier   IdentityVerifier
	vaults     service.VaultService

	// Context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewVaultOpsConsumer creates a new consumer with all handlers configured
func NewVaultOpsConsumer(natsServers string, verifier IdentityVerifier, vaults service.VaultService) *VaultOpsConsumer {
	ctx, cancel := context.WithCancel(context.Background())

	return &VaultOpsConsumer{
		natsClient: NewNATSClient(natsServers),
		verifier:   verifier,
		vaults:     vaults,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start connects to NATS and serves requests until Stop is called
func (c *VaultOpsConsumer) Start(ctx context.Context) error {
	log.Info("Starting vault operations consumer")

	// Connect to NATS
	if err := c.natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	handlers := map[string]func(context.Context, []byte) []byte{
		SubjectDeposit:  c.HandleDeposit,
		SubjectWithdraw: c.HandleWithdraw,
		SubjectBalance:  c.HandleBalance,
	}

	for subject, handler := range handlers {
		if err := c.natsClient.SubscribeRequests(subject, opsQueueGroup, handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
	}

	log.WithField("queue", opsQueueGroup).Info("Vault operations consumer started")

	// Wait for shutdown signal
	<-c.ctx.Done()

	// Clean up
	return c.natsClient.Close()
}

// Stop gracefully shuts down the consumer
func (c *VaultOpsConsumer) Stop() {
	log.Info("Stopping vault operations consumer")
	c.cancel()
}

// HandleDeposit processes a deposit request and replies with the updated
// position
func (c *VaultOpsConsumer) HandleDeposit(ctx context.Context, data []byte) []byte {
	var req DepositRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("bad_request", "malformed deposit request")
	}

	owner, err := c.verifier.Verify(req.Token)
	if err != nil {
		return errorResponse("unauthorized", err.Error())
	}

	result, err := c.vaults.Deposit(ctx, owner, req.AssetID, req.OwnerAccount, req.Amount, req.RequestID)
	if err != nil {
		log.WithFields(log.Fields{
			"ownerIdentity": owner,
			"assetId":       req.AssetID,
			"amount":        req.Amount,
			"error":         err,
		}).Warn("Deposit rejected")
		return errorResponse(errorKind(err), err.Error())
	}

	return successResponse(result)
}

// HandleWithdraw processes a withdrawal request and replies with the updated
// position
func (c *VaultOpsConsumer) HandleWithdraw(ctx context.Context, data []byte) []byte {
	var req WithdrawRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("bad_request", "malformed withdraw request")
	}

	owner, err := c.verifier.Verify(req.Token)
	if err != nil {
		return errorResponse("unauthorized", err.Error())
	}

	result, err := c.vaults.Withdraw(ctx, owner, req.AssetID, req.OwnerAccount, req.Amount, req.RequestID)
	if err != nil {
		log.WithFields(log.Fields{
			"ownerIdentity": owner,
			"assetId":       req.AssetID,
			"amount":        req.Amount,
			"error":         err,
		}).Warn("Withdrawal rejected")
		return errorResponse(errorKind(err), err.Error())
	}

	return successResponse(result)
}

// HandleBalance processes a balance query
func (c *VaultOpsConsumer) HandleBalance(ctx context.Context, data []byte) []byte {
	var req BalanceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("bad_request", "malformed balance request")
	}

	owner, err := c.verifier.Verify(req.Token)
	if err != nil {
		return errorResponse("unauthorized", err.Error())
	}

	info, err := c.vaults.GetBalance(ctx, owner, req.AssetID)
	if err != nil {
		return errorResponse(errorKind(err), err.Error())
	}

	return successResponse(info)
}

// errorKind maps domain errors to the machine-readable kinds clients switch on
func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientDepositAmount):
		return "insufficient_deposit_amount"
	case errors.Is(err, models.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, models.ErrArithmeticOverflow):
		return "arithmetic_overflow"
	case errors.Is(err, models.ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, models.ErrVaultNotFound):
		return "vault_not_found"
	case errors.Is(err, models.ErrPositionNotFound):
		return "position_not_found"
	default:
		return "internal"
	}
}

func errorResponse(kind, message string) []byte {
	data, err := json.Marshal(OperationResponse{
		OK:    false,
		Error: &ErrorInfo{Kind: kind, Message: message},
	})
	if err != nil {
		log.WithError(err).Error("Failed to marshal error response")
		return []byte(`{"ok":false,"error":{"kind":"internal","message":"response encoding failed"}}`)
	}
	return data
}

func successResponse(result any) []byte {
	payload, err := json.Marshal(result)
	if err != nil {
		return errorResponse("internal", "response encoding failed")
	}

	data, err := json.Marshal(OperationResponse{
		OK:     true,
		Result: payload,
	})
	if err != nil {
		return errorResponse("internal", "response encoding failed")
	}
	return data
}
