package app

import (
	"fmt"
	"log"
	"sync"

	"payroll-backend/internal/clients"
	"payroll-backend/internal/config"
	"payroll-backend/internal/db"
	"payroll-backend/internal/events"
	"payroll-backend/internal/repository"
	"payroll-backend/internal/services"
	"payroll-backend/internal/zk"

	"gorm.io/gorm"
)

// ServiceContainer wires the proof pipeline and the settlement pipeline.
type ServiceContainer struct {
	// Database
	DB *gorm.DB

	// Repositories
	SettlementRepo repository.SettlementRepository

	// Proof pipeline
	Hasher       *zk.FieldHasher
	Builder      *zk.CommitmentBuilder
	Prover       zk.Prover
	ProofService *services.ProofService

	// Settlement pipeline
	RelayerClient     *clients.RelayerClient
	ContractService   *services.PayrollContractService
	SettlementService *services.SettlementService

	// Event publishing (optional)
	NATSClient *clients.NATSClient
	Publisher  *events.Publisher

	natsOnce sync.Once
}

// Global service container instance
var Container *ServiceContainer
var containerOnce sync.Once

// InitializeContainer builds the container once, in dependency order.
func InitializeContainer() (*ServiceContainer, error) {
	var initErr error

	containerOnce.Do(func() {
		log.Println("🚀 Initializing Service Container...")

		container := &ServiceContainer{
			DB: db.DB,
		}

		container.SettlementRepo = repository.NewSettlementRepository(container.DB)

		if err := container.initProofServices(); err != nil {
			initErr = fmt.Errorf("failed to initialize proof services: %w", err)
			return
		}

		// NATS is optional; settlement works without event publishing.
		if err := container.initEventServices(); err != nil {
			log.Printf("⚠️ Event services initialization skipped: %v", err)
		}

		if err := container.initSettlementServices(); err != nil {
			initErr = fmt.Errorf("failed to initialize settlement services: %w", err)
			return
		}

		Container = container
		log.Println("✅ Service Container initialized successfully")
	})

	return Container, initErr
}

// initProofServices loads the circuit artifacts and builds the bounded
// prover pool.
func (c *ServiceContainer) initProofServices() error {
	log.Println("🔧 Initializing Proof Services...")

	cfg := config.AppConfig.Circuit

	c.Hasher = zk.NewFieldHasher()
	c.Builder = zk.NewCommitmentBuilder(c.Hasher)

	prover, err := zk.NewGnarkProver(cfg.ConstraintSystemPath, cfg.ProvingKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load circuit artifacts: %w", err)
	}
	c.Prover = zk.NewProofWorkerPool(prover, cfg.Workers)
	c.ProofService = services.NewProofService(c.Builder, c.Prover)

	log.Printf("✅ Proof services initialized (%d workers)", cfg.Workers)
	return nil
}

// initSettlementServices builds the relayer client, the on-chain contract
// client and the orchestrator on top of them.
func (c *ServiceContainer) initSettlementServices() error {
	log.Println("🔧 Initializing Settlement Services...")

	c.RelayerClient = clients.NewRelayerClient(config.AppConfig.Relayer)

	contractService, err := services.NewPayrollContractService(config.AppConfig.Blockchain)
	if err != nil {
		return fmt.Errorf("failed to initialize contract service: %w", err)
	}
	c.ContractService = contractService

	c.SettlementService = services.NewSettlementService(
		c.RelayerClient,
		c.ContractService,
		c.SettlementRepo,
		c.Publisher,
		config.AppConfig.Frontend.BaseURL,
	)

	log.Println("✅ Settlement services initialized")
	return nil
}

// initEventServices connects NATS when configured.
func (c *ServiceContainer) initEventServices() error {
	if config.AppConfig == nil || config.AppConfig.NATS.URL == "" {
		return fmt.Errorf("NATS not configured")
	}

	var initErr error
	c.natsOnce.Do(func() {
		log.Println("🔌 Connecting to NATS...")

		natsClient, err := clients.NewNATSClient(config.AppConfig.NATS.URL)
		if err != nil {
			initErr = fmt.Errorf("failed to create NATS client: %w", err)
			return
		}

		c.NATSClient = natsClient
		c.Publisher = events.NewPublisher(natsClient, config.AppConfig.NATS.Subject)
		log.Printf("✅ NATS client connected: %s", config.AppConfig.NATS.URL)
	})
	return initErr
}

// Cleanup releases external connections.
func (c *ServiceContainer) Cleanup() {
	log.Println("🧹 Cleaning up Service Container...")

	if c.NATSClient != nil {
		c.NATSClient.Close()
	}

	log.Println("✅ Service Container cleaned up")
}
