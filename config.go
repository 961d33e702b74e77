package intents

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// TimeoutConfig bounds the time-sensitive phases of a leg's execution.
type TimeoutConfig struct {
	// WatermarkTimeout bounds the wait for the chain head to pass a batch's
	// recentBlock. Zero means no deadline, which reproduces an unbounded
	// wait; production deployments should always set one.
	WatermarkTimeout time.Duration

	// SubmitTimeout bounds a single submission attempt (direct or relay).
	SubmitTimeout time.Duration

	// ReceiptTimeout bounds the wait for the execute transaction's receipt.
	ReceiptTimeout time.Duration

	// PollInterval is the delay between chain-head polls during the
	// watermark wait.
	PollInterval time.Duration
}

// DefaultTimeouts provides sensible defaults for solver operation.
var DefaultTimeouts = TimeoutConfig{
	WatermarkTimeout: 10 * time.Minute,
	SubmitTimeout:    30 * time.Second,
	ReceiptTimeout:   2 * time.Minute,
	PollInterval:     3 * time.Second,
}

// Validate checks that the configured durations are usable.
func (c TimeoutConfig) Validate() error {
	if c.WatermarkTimeout < 0 {
		return fmt.Errorf("intents: negative watermark timeout %v", c.WatermarkTimeout)
	}
	if c.SubmitTimeout <= 0 {
		return fmt.Errorf("intents: submit timeout must be positive, got %v", c.SubmitTimeout)
	}
	if c.ReceiptTimeout <= 0 {
		return fmt.Errorf("intents: receipt timeout must be positive, got %v", c.ReceiptTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("intents: poll interval must be positive, got %v", c.PollInterval)
	}
	return nil
}

// Config is the deployment configuration surface: where the relay lives,
// which chains are reachable, and how long to wait for what. Signer key
// material is deliberately not part of the file format; keys are injected
// into signers directly.
type Config struct {
	RelayBaseURL string
	Chains       []ChainConfig
	Timeouts     TimeoutConfig
}

type fileConfig struct {
	RelayBaseURL string            `yaml:"relayBaseUrl"`
	Chains       []fileChainConfig `yaml:"chains"`
	Timeouts     fileTimeouts      `yaml:"timeouts"`
}

// fileTimeouts carries durations as strings ("3s", "10m") since yaml.v3 has
// no native time.Duration support.
type fileTimeouts struct {
	WatermarkTimeout string `yaml:"watermarkTimeout"`
	SubmitTimeout    string `yaml:"submitTimeout"`
	ReceiptTimeout   string `yaml:"receiptTimeout"`
	PollInterval     string `yaml:"pollInterval"`
}

func (t fileTimeouts) toConfig() (TimeoutConfig, error) {
	cfg := DefaultTimeouts
	for _, f := range []struct {
		raw string
		dst *time.Duration
	}{
		{t.WatermarkTimeout, &cfg.WatermarkTimeout},
		{t.SubmitTimeout, &cfg.SubmitTimeout},
		{t.ReceiptTimeout, &cfg.ReceiptTimeout},
		{t.PollInterval, &cfg.PollInterval},
	} {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return TimeoutConfig{}, fmt.Errorf("intents: invalid duration %q: %w", f.raw, err)
		}
		*f.dst = d
	}
	return cfg, nil
}

type fileChainConfig struct {
	Name            string `yaml:"name"`
	ChainID         int64  `yaml:"chainId"`
	RPCURL          string `yaml:"rpcUrl"`
	DelegateAddress string `yaml:"delegateAddress"`
}

// LoadConfig reads a YAML deployment configuration. Chain entries may give
// either a registered network name or an explicit chain id; the delegate
// address is required per chain.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("intents: reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes.
func ParseConfig(data []byte) (*Config, error) {
	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("intents: parsing config: %w", err)
	}

	timeouts, err := raw.Timeouts.toConfig()
	if err != nil {
		return nil, err
	}
	if err := timeouts.Validate(); err != nil {
		return nil, err
	}
	cfg := &Config{
		RelayBaseURL: raw.RelayBaseURL,
		Timeouts:     timeouts,
	}

	for i, entry := range raw.Chains {
		if entry.ChainID < 0 {
			return nil, fmt.Errorf("%w: chain %d (%q): negative chain id %d", ErrUnknownChain, i, entry.Name, entry.ChainID)
		}
		chainID := big.NewInt(entry.ChainID)
		if entry.ChainID == 0 {
			chainID = ChainIDByName(entry.Name)
			if chainID == nil {
				return nil, fmt.Errorf("%w: chain %d (%q) has no chainId and is not a registered network", ErrUnknownChain, i, entry.Name)
			}
		}
		if !common.IsHexAddress(entry.DelegateAddress) {
			return nil, fmt.Errorf("intents: chain %d (%q): invalid delegate address %q", i, entry.Name, entry.DelegateAddress)
		}
		cfg.Chains = append(cfg.Chains, ChainConfig{
			ChainID:         chainID,
			Name:            entry.Name,
			RPCURL:          entry.RPCURL,
			DelegateAddress: common.HexToAddress(entry.DelegateAddress),
		})
	}
	return cfg, nil
}

// Chain returns the configuration for a chain id, or nil when the id is not
// configured.
func (c *Config) Chain(chainID *big.Int) *ChainConfig {
	if chainID == nil {
		return nil
	}
	for i := range c.Chains {
		if c.Chains[i].ChainID != nil && c.Chains[i].ChainID.Cmp(chainID) == 0 {
			return &c.Chains[i]
		}
	}
	return nil
}
