// Package config loads the per-repo pohwd configuration file and
// supplies the platform default paths the daemon and its clients use
// to find sockets, keys, and state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config mirrors the daemon's recognized TOML options verbatim, plus
// the ambient paths needed to actually run a daemon process.
type Config struct {
	MinCNSThreshold      uint8    `toml:"min_cns_threshold"`
	MinEntropy           float64  `toml:"min_entropy"`
	RingCapacity         uint32   `toml:"ring_capacity"`
	TickMs               uint32   `toml:"tick_ms"`
	MaxBattery           float64  `toml:"max_battery"`
	ProductiveExtensions []string `toml:"productive_extensions"`
	DifficultyMinBits    uint8    `toml:"difficulty_min_bits"`
	DifficultyMaxBits    uint8    `toml:"difficulty_max_bits"`
	MinHWDelta           uint64   `toml:"min_hw_delta"`
	MaxPuzzleMs          uint32   `toml:"max_puzzle_ms"`
	MaxCommitBudgetMs    uint32   `toml:"max_commit_budget_ms"`

	DataDir       string `toml:"data_dir"`
	SocketPath    string `toml:"socket_path"`
	TelemetryPath string `toml:"telemetry_socket_path"`
	SigningKeyPath string `toml:"signing_key_path"`
	BatteryPath   string `toml:"battery_path"`
	LedgerPath    string `toml:"ledger_path"`

	IdentityUseTPM bool `toml:"identity_use_tpm"`
	MCPEnabled     bool `toml:"mcp_enabled"`

	LogLevel         string   `toml:"log_level"`
	LogFormat        string   `toml:"log_format"`
	LogFilePath      string   `toml:"log_file_path"`
	LogMaxSizeMB     int64    `toml:"log_max_size_mb"`
	LogMaxAgeDays    int      `toml:"log_max_age_days"`
	LogMaxBackups    int      `toml:"log_max_backups"`
	LogCompress      bool     `toml:"log_compress"`
	LogAddSource     bool     `toml:"log_add_source"`
	LogRedactPatterns []string `toml:"log_redact_patterns"`

	AuditLogPath string `toml:"audit_log_path"`
	CrashDir     string `toml:"crash_dir"`
}

func Default() Config {
	paths := GetDefaultPaths()
	return Config{
		MinCNSThreshold:      50,
		MinEntropy:           2.5,
		RingCapacity:         2048,
		TickMs:               5000,
		MaxBattery:           600.0,
		ProductiveExtensions: []string{".go", ".rs", ".py", ".ts", ".js", ".c", ".cpp", ".java"},
		DifficultyMinBits:    10,
		DifficultyMaxBits:    22,
		MinHWDelta:           30,
		MaxPuzzleMs:          60000,
		MaxCommitBudgetMs:    90000,

		DataDir:        paths.DataDir,
		SocketPath:     paths.IPCSocketPath,
		TelemetryPath:  paths.TelemetrySocketPath,
		SigningKeyPath: filepath.Join(paths.DataDir, "node.key"),
		BatteryPath:    filepath.Join(paths.DataDir, "battery.bin"),
		LedgerPath:     filepath.Join(paths.DataDir, "ledger.db"),

		LogLevel:          "info",
		LogFormat:         "text",
		LogMaxSizeMB:      50,
		LogMaxAgeDays:     90,
		LogMaxBackups:     10,
		LogCompress:       true,
		LogRedactPatterns: []string{"signature", "private_key", "seed"},

		AuditLogPath: filepath.Join(paths.DataDir, "audit.log"),
		CrashDir:     filepath.Join(paths.DataDir, "crashes"),
	}
}

// Load reads path if present, overlaying it onto Default(); a missing
// file is not an error, matching daemon first-run behavior.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DifficultyMinBits > c.DifficultyMaxBits {
		return fmt.Errorf("config: difficulty_min_bits (%d) exceeds difficulty_max_bits (%d)", c.DifficultyMinBits, c.DifficultyMaxBits)
	}
	if c.MaxBattery <= 0 {
		return fmt.Errorf("config: max_battery must be positive")
	}
	if c.RingCapacity == 0 {
		return fmt.Errorf("config: ring_capacity must be positive")
	}
	return nil
}

// EnsureDirectories creates the directories Config's paths live under.
func (c Config) EnsureDirectories() error {
	for _, p := range []string{c.DataDir, filepath.Dir(c.SocketPath), filepath.Dir(c.SigningKeyPath)} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0o700); err != nil {
			return fmt.Errorf("config: mkdir %s: %w", p, err)
		}
	}
	return nil
}
