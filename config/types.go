package config

import "fmt"

// ClientType selects which of the two deployed dispatcher contracts on a
// chain to observe.
type ClientType string

const (
	// ClientTypeSim observes the sim-client dispatcher.
	ClientTypeSim ClientType = "sim"

	// ClientTypeProof observes the proof-client dispatcher.
	ClientTypeProof ClientType = "proof"
)

// ParseClientType validates a raw client type string.
func ParseClientType(s string) (ClientType, error) {
	switch ClientType(s) {
	case ClientTypeSim, ClientTypeProof:
		return ClientType(s), nil
	default:
		return "", fmt.Errorf("invalid client type %q (want 'sim' or 'proof')", s)
	}
}

type Config struct {
	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	// Monitor home directory (default: ~/.polylens)
	MonitorHome string `json:"monitor_home"`

	// Query Server Config
	QueryServerPort int `json:"query_server_port"` // Port for the HTTP query server (default: 8080)

	// Scan Config
	ScanIntervalSeconds int `json:"scan_interval_seconds"` // How often the alert scan job runs (default: 60)
	RPCTimeoutSeconds   int `json:"rpc_timeout_seconds"`   // Per-RPC-call timeout (default: 10)
	LookupConcurrency   int `json:"lookup_concurrency"`    // Parallel block timestamp lookups per scan (default: 8)

	// Notification Config
	MailgunDomain string `json:"mailgun_domain"`
	MailgunAPIKey string `json:"mailgun_api_key"`
	MailgunFrom   string `json:"mailgun_from"`
	DashboardURL  string `json:"dashboard_url"` // Linked from alert emails

	// Chain registry: chain name to chain-specific settings
	Chains map[string]ChainConfig `json:"chains"`
}

// ChainConfig is one chain registry entry.
type ChainConfig struct {
	ChainID          int64  `json:"chain_id"`           // Numeric EVM chain id
	RPCURL           string `json:"rpc_url"`            // JSON-RPC endpoint
	ProofDispatcher  string `json:"proof_dispatcher"`   // Proof-client dispatcher contract address
	SimDispatcher    string `json:"sim_dispatcher"`     // Sim-client dispatcher contract address
	BlockTimeSeconds int    `json:"block_time_seconds"` // Expected block interval
}

// DispatcherAddress returns the dispatcher contract address for the given
// client type.
func (c ChainConfig) DispatcherAddress(clientType ClientType) string {
	if clientType == ClientTypeSim {
		return c.SimDispatcher
	}
	return c.ProofDispatcher
}

// Chain looks up a chain registry entry by name.
func (c *Config) Chain(name string) (ChainConfig, error) {
	chain, ok := c.Chains[name]
	if !ok {
		return ChainConfig{}, fmt.Errorf("unknown chain %q", name)
	}
	return chain, nil
}
