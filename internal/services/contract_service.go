package services

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"payroll-backend/internal/config"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// payrollABI covers the single relayed entry point plus the event carrying
// the assigned payroll id.
const payrollABI = `[
	{
		"inputs": [
			{"name": "employer", "type": "address"},
			{"name": "proof", "type": "uint256[8]"},
			{"name": "totalAmount", "type": "uint256"},
			{"name": "commitments", "type": "uint256[5]"},
			{"name": "recipients", "type": "address[5]"}
		],
		"name": "createPayrollRelayed",
		"outputs": [{"name": "payrollId", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "payrollId", "type": "uint256"},
			{"indexed": true, "name": "employer", "type": "address"},
			{"indexed": false, "name": "totalAmount", "type": "uint256"}
		],
		"name": "PayrollCreated",
		"type": "event"
	}
]`

// PayrollContractService registers payrolls on the settlement contract using
// the escrow identity. The escrow key is one shared credential; the chain
// itself serializes concurrent registrations.
type PayrollContractService struct {
	client          *ethclient.Client
	chainID         *big.Int
	escrowKey       *ecdsa.PrivateKey
	escrowAddress   common.Address
	contractAddress common.Address
	gasPrice        string
	gasLimit        uint64
	abi             abi.ABI
}

// NewPayrollContractService dials the first reachable RPC endpoint and
// derives the escrow address from the configured key.
func NewPayrollContractService(cfg config.BlockchainConfig) (*PayrollContractService, error) {
	escrowKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.EscrowKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid escrow private key: %w", err)
	}
	escrowAddress := crypto.PubkeyToAddress(escrowKey.PublicKey)

	var client *ethclient.Client
	var connected string
	for _, endpoint := range cfg.RPCEndpoints {
		c, dialErr := ethclient.Dial(endpoint)
		if dialErr != nil {
			err = dialErr
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, pingErr := c.NetworkID(ctx)
		cancel()
		if pingErr != nil {
			err = pingErr
			c.Close()
			continue
		}
		client = c
		connected = endpoint
		break
	}
	if client == nil {
		return nil, fmt.Errorf("failed to connect to any RPC endpoint: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(payrollABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse payroll ABI: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"endpoint": connected,
		"escrow":   escrowAddress.Hex(),
		"contract": cfg.PayrollContract,
	}).Info("✅ Settlement contract client ready")

	return &PayrollContractService{
		client:          client,
		chainID:         big.NewInt(cfg.ChainID),
		escrowKey:       escrowKey,
		escrowAddress:   escrowAddress,
		contractAddress: common.HexToAddress(cfg.PayrollContract),
		gasPrice:        cfg.GasPrice,
		gasLimit:        cfg.GasLimit,
		abi:             parsedABI,
	}, nil
}

// EscrowAddress is the authoritative destination for transfer authorizations.
func (s *PayrollContractService) EscrowAddress() common.Address {
	return s.escrowAddress
}

// CreatePayrollRelayed calls the settlement contract as escrow and waits for
// the transaction to mine. Returns the settlement tx hash and the newly
// assigned payroll id parsed from the PayrollCreated event.
func (s *PayrollContractService) CreatePayrollRelayed(ctx context.Context, employer common.Address, proof [8]*big.Int, totalAmount *big.Int, commitments [5]*big.Int, recipients [5]common.Address) (string, int64, error) {
	callData, err := s.abi.Pack("createPayrollRelayed", employer, proof, totalAmount, commitments, recipients)
	if err != nil {
		return "", 0, fmt.Errorf("failed to pack createPayrollRelayed call: %w", err)
	}

	nonce, err := s.client.PendingNonceAt(ctx, s.escrowAddress)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get escrow nonce: %w", err)
	}

	gasPrice, err := s.resolveGasPrice(ctx)
	if err != nil {
		return "", 0, err
	}

	gasLimit := s.gasLimit
	if gasLimit == 0 {
		gasLimit = 900000 // Groth16 verification plus 5 commitment writes
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &s.contractAddress,
		Value:    big.NewInt(0),
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     callData,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.escrowKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign settlement transaction: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signedTx); err != nil {
		return "", 0, fmt.Errorf("failed to send settlement transaction: %w", err)
	}

	txHash := signedTx.Hash().Hex()
	logrus.WithFields(logrus.Fields{
		"tx_hash":  txHash,
		"employer": employer.Hex(),
	}).Info("Settlement transaction submitted, waiting for receipt")

	receipt, err := bind.WaitMined(ctx, s.client, signedTx)
	if err != nil {
		return txHash, 0, fmt.Errorf("settlement transaction not mined: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return txHash, 0, fmt.Errorf("settlement transaction reverted: %s", txHash)
	}

	payrollID, err := s.parsePayrollID(receipt)
	if err != nil {
		return txHash, 0, err
	}

	return txHash, payrollID, nil
}

func (s *PayrollContractService) resolveGasPrice(ctx context.Context) (*big.Int, error) {
	if s.gasPrice != "" && s.gasPrice != "auto" {
		gasPrice, ok := new(big.Int).SetString(s.gasPrice, 10)
		if !ok {
			return nil, fmt.Errorf("invalid configured gas price: %s", s.gasPrice)
		}
		return gasPrice, nil
	}

	suggested, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	// 20% headroom over the node's suggestion
	gasPrice := new(big.Int).Mul(suggested, big.NewInt(120))
	return gasPrice.Div(gasPrice, big.NewInt(100)), nil
}

func (s *PayrollContractService) parsePayrollID(receipt *types.Receipt) (int64, error) {
	eventID := s.abi.Events["PayrollCreated"].ID
	for _, vLog := range receipt.Logs {
		if vLog.Address != s.contractAddress || len(vLog.Topics) < 2 {
			continue
		}
		if vLog.Topics[0] == eventID {
			return new(big.Int).SetBytes(vLog.Topics[1].Bytes()).Int64(), nil
		}
	}
	return 0, fmt.Errorf("PayrollCreated event not found in receipt %s", receipt.TxHash.Hex())
}
