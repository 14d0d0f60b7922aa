package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config application configuration structure
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Blockchain BlockchainConfig `yaml:"blockchain"`
	Relayer    RelayerConfig    `yaml:"relayer"`
	Circuit    CircuitConfig    `yaml:"circuit"`
	Frontend   FrontendConfig   `yaml:"frontend"`
	NATS       NATSConfig       `yaml:"nats"`
	CORS       CORSConfig       `yaml:"cors"`
	Admin      AdminConfig      `yaml:"admin"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver"`
}

// BlockchainConfig settlement chain configuration
type BlockchainConfig struct {
	ChainID         int64    `yaml:"chainId"`
	RPCEndpoints    []string `yaml:"rpcEndpoints"`
	PayrollContract string   `yaml:"payrollContract"` // PrivatePayroll settlement contract
	TokenContract   string   `yaml:"tokenContract"`   // EIP-3009 stablecoin contract
	EscrowKey       string   `yaml:"escrowKey"`       // escrow private key (hex, no 0x prefix)
	GasPrice        string   `yaml:"gasPrice"`        // wei, or "auto"
	GasLimit        uint64   `yaml:"gasLimit"`
}

// RelayerConfig fee relayer service configuration
type RelayerConfig struct {
	BaseURL      string `yaml:"baseUrl"`
	APIKey       string `yaml:"apiKey"`
	Timeout      int    `yaml:"timeout"`      // per-request timeout (seconds)
	PollInterval int    `yaml:"pollInterval"` // confirmation poll interval (seconds)
	PollTimeout  int    `yaml:"pollTimeout"`  // total confirmation wait (seconds)
}

// CircuitConfig Groth16 circuit artifact configuration
type CircuitConfig struct {
	ConstraintSystemPath string `yaml:"constraintSystemPath"` // compiled R1CS
	ProvingKeyPath       string `yaml:"provingKeyPath"`       // Groth16 proving key
	Workers              int    `yaml:"workers"`              // proof worker pool size
}

// FrontendConfig claim URL configuration
type FrontendConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// NATSConfig NATS event publishing configuration
type NATSConfig struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"`
	Subject string `yaml:"subject"` // subject prefix, e.g. "payroll"
}

// CORSConfig CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"`
}

// AdminConfig admin API access configuration
type AdminConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
}

var AppConfig *Config

// LoadConfig loads the YAML configuration file. An empty path falls back to
// config.yaml, preferring config.local.yaml when present.
func LoadConfig(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
			log.Printf("🔧 Using local configuration file: config.local.yaml")
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&config)

	if err := validate(&config); err != nil {
		return err
	}

	AppConfig = &config
	log.Printf("✅ Configuration loaded from %s", configPath)
	return nil
}

// applyEnvOverrides lets deploy environments override selected values without
// editing the YAML file.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.Database.DSN = v
	}
	if v := os.Getenv("ESCROW_PRIVATE_KEY"); v != "" {
		config.Blockchain.EscrowKey = v
	}
	if v := os.Getenv("RELAYER_API_KEY"); v != "" {
		config.Relayer.APIKey = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		config.Frontend.BaseURL = v
	}
	if v := os.Getenv("ADMIN_JWT_SECRET"); v != "" {
		config.Admin.JWTSecret = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		config.CORS.AllowedOrigins = config.CORS.AllowedOrigins[:0]
		for _, o := range origins {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				config.CORS.AllowedOrigins = append(config.CORS.AllowedOrigins, trimmed)
			}
		}
	}
}

func validate(config *Config) error {
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Relayer.BaseURL == "" {
		return fmt.Errorf("relayer.baseUrl is required")
	}
	if config.Relayer.PollInterval <= 0 {
		config.Relayer.PollInterval = 2
	}
	if config.Relayer.PollTimeout <= 0 {
		config.Relayer.PollTimeout = 120
	}
	if config.Blockchain.PayrollContract == "" {
		return fmt.Errorf("blockchain.payrollContract is required")
	}
	if len(config.Blockchain.RPCEndpoints) == 0 {
		return fmt.Errorf("blockchain.rpcEndpoints must list at least one endpoint")
	}
	if config.Blockchain.EscrowKey == "" {
		return fmt.Errorf("blockchain.escrowKey is required")
	}
	if config.Circuit.Workers <= 0 {
		config.Circuit.Workers = 2
	}
	if config.Frontend.BaseURL == "" {
		config.Frontend.BaseURL = "http://localhost:3000"
	}
	return nil
}
