package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payroll-backend/internal/dto"
)

func testAuthorization() dto.TransferAuthorization {
	return dto.TransferAuthorization{
		From:        "0x742d35Cc6634C0532925a3b0F26750C66d78EB66",
		To:          "0xabcdef1111111111111111111111111111111111",
		Value:       "3000000",
		ValidAfter:  "0",
		ValidBefore: "99999999999",
		Nonce:       "0xabc",
	}
}

func newTestClient(baseURL string) *RelayerClient {
	return &RelayerClient{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		Client:       &http.Client{Timeout: 5 * time.Second},
		pollInterval: 10 * time.Millisecond,
		pollTimeout:  500 * time.Millisecond,
	}
}

func TestSubmitZeroFeeTransfer(t *testing.T) {
	var gotIP, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/transfers" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotIP = r.Header.Get("X-Origin-IP")
		gotAuth = r.Header.Get("Authorization")

		var req submitTransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Signature != "0xsig" {
			t.Errorf("signature = %q", req.Signature)
		}

		json.NewEncoder(w).Encode(submitTransferResponse{AuthorizationID: "auth-42"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	id, err := client.SubmitZeroFeeTransfer(context.Background(), "10.1.2.3", testAuthorization(), "0xsig")
	if err != nil {
		t.Fatalf("SubmitZeroFeeTransfer: %v", err)
	}
	if id != "auth-42" {
		t.Errorf("authorization id = %q, want auth-42", id)
	}
	if gotIP != "10.1.2.3" {
		t.Errorf("X-Origin-IP = %q", gotIP)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
}

func TestSubmitZeroFeeTransferRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid signature"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.SubmitZeroFeeTransfer(context.Background(), "10.1.2.3", testAuthorization(), "0xsig"); err == nil {
		t.Fatal("expected error for rejected authorization")
	}
}

func TestWaitForConfirmationPollsUntilTerminal(t *testing.T) {
	var polls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/transfers/auth-42" {
			t.Errorf("unexpected poll path: %s", r.URL.Path)
		}
		polls++
		status := TransferStatus{Status: "pending"}
		if polls >= 3 {
			status = TransferStatus{Status: "confirmed", TxHash: "0xtransfer"}
		}
		json.NewEncoder(w).Encode(status)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	status, err := client.WaitForConfirmation(context.Background(), "10.1.2.3", "auth-42")
	if err != nil {
		t.Fatalf("WaitForConfirmation: %v", err)
	}
	if status.Status != TransferStatusConfirmed || status.TxHash != "0xtransfer" {
		t.Errorf("status = %+v", status)
	}
	if polls < 3 {
		t.Errorf("expected at least 3 polls, got %d", polls)
	}
}

func TestWaitForConfirmationReturnsFailedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TransferStatus{Status: "failed", Error: "nonce already used"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	status, err := client.WaitForConfirmation(context.Background(), "10.1.2.3", "auth-42")
	if err != nil {
		t.Fatalf("WaitForConfirmation: %v", err)
	}
	// Terminal non-confirmed statuses come back as data, not as an error;
	// the orchestrator decides how to classify them.
	if status.Status != "failed" || status.Error != "nonce already used" {
		t.Errorf("status = %+v", status)
	}
}

func TestWaitForConfirmationTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TransferStatus{Status: "pending"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.pollTimeout = 50 * time.Millisecond

	if _, err := client.WaitForConfirmation(context.Background(), "10.1.2.3", "auth-42"); err == nil {
		t.Fatal("expected timeout error for perpetually pending transfer")
	}
}
