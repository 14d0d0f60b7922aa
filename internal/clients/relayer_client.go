package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"payroll-backend/internal/config"
	"payroll-backend/internal/dto"
	"payroll-backend/internal/metrics"

	"github.com/sirupsen/logrus"
)

// TransferStatusConfirmed is the only status that allows settlement to
// proceed; every other terminal status aborts the attempt.
const TransferStatusConfirmed = "confirmed"

// RelayerClient talks to the fee relayer that executes EIP-3009 transfers on
// the employer's behalf. The relayer rate-limits per originating user, so
// every call is tagged with the caller's IP.
type RelayerClient struct {
	BaseURL      string
	APIKey       string
	Client       *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewRelayerClient creates a relayer client from configuration.
func NewRelayerClient(cfg config.RelayerConfig) *RelayerClient {
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &RelayerClient{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		Client:       &http.Client{Timeout: timeout},
		pollInterval: time.Duration(cfg.PollInterval) * time.Second,
		pollTimeout:  time.Duration(cfg.PollTimeout) * time.Second,
	}
}

type submitTransferRequest struct {
	Authorization dto.TransferAuthorization `json:"authorization"`
	Signature     string                    `json:"signature"`
}

type submitTransferResponse struct {
	AuthorizationID string `json:"authorizationId"`
	Error           string `json:"error"`
}

// TransferStatus is the relayer's view of a submitted transfer.
type TransferStatus struct {
	Status string `json:"status"` // pending | confirmed | failed
	TxHash string `json:"txHash,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SubmitZeroFeeTransfer forwards a signed authorization to the relayer and
// returns the relayer-assigned authorization id.
func (c *RelayerClient) SubmitZeroFeeTransfer(ctx context.Context, userIP string, auth dto.TransferAuthorization, signature string) (string, error) {
	body, err := json.Marshal(submitTransferRequest{Authorization: auth, Signature: signature})
	if err != nil {
		return "", fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Origin-IP", userIP)
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		metrics.RelayerRequestsTotal.WithLabelValues("submit", "error").Inc()
		return "", fmt.Errorf("relayer request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read relayer response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		metrics.RelayerRequestsTotal.WithLabelValues("submit", "rejected").Inc()
		return "", fmt.Errorf("relayer rejected authorization (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result submitTransferResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal relayer response: %w", err)
	}
	if result.AuthorizationID == "" {
		return "", fmt.Errorf("relayer returned no authorization id: %s", string(respBody))
	}

	metrics.RelayerRequestsTotal.WithLabelValues("submit", "success").Inc()
	logrus.WithFields(logrus.Fields{
		"authorization_id": result.AuthorizationID,
	}).Info("Zero-fee transfer submitted to relayer")
	return result.AuthorizationID, nil
}

// WaitForConfirmation polls the relayer until the transfer reaches a terminal
// status or the configured poll window expires. A relayed submission cannot
// be revoked, so cancelling the context only stops the polling.
func (c *RelayerClient) WaitForConfirmation(ctx context.Context, userIP, authorizationID string) (*TransferStatus, error) {
	deadline := time.Now().Add(c.pollTimeout)
	attempts := 0

	for {
		attempts++
		status, err := c.fetchStatus(ctx, userIP, authorizationID)
		if err != nil {
			metrics.RelayerRequestsTotal.WithLabelValues("poll", "error").Inc()
			return nil, err
		}
		metrics.RelayerRequestsTotal.WithLabelValues("poll", "success").Inc()

		if status.Status != "pending" {
			metrics.RelayerPollAttempts.Observe(float64(attempts))
			return status, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("transfer confirmation timed out after %v (authorization %s)", c.pollTimeout, authorizationID)
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *RelayerClient) fetchStatus(ctx context.Context, userIP, authorizationID string) (*TransferStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/transfers/"+authorizationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}
	req.Header.Set("X-Origin-IP", userIP)
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relayer status request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read relayer status: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relayer status query failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var status TransferStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relayer status: %w", err)
	}
	return &status, nil
}
