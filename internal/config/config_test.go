package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BatchSize != 999 {
		t.Errorf("batch size = %d, want 999", cfg.BatchSize)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if !cfg.CheckpointEnabled {
		t.Error("checkpoint must default to enabled")
	}
	if cfg.Out == "" || cfg.Checkpoint == "" {
		t.Error("missing default paths")
	}
}

func TestLoadFromFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.Uint64("chain-id", 0, "")
	flags.String("exchanges", "", "")
	if err := flags.Parse([]string{
		"--rpc", "https://rpc.example",
		"--chain-id", "97",
		"--exchanges", "97=0x00000000000000000000000000000000000000E1",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RPCURL != "https://rpc.example" {
		t.Errorf("rpc = %q", cfg.RPCURL)
	}
	if cfg.ChainID != 97 {
		t.Errorf("chain id = %d, want 97", cfg.ChainID)
	}
	if cfg.Exchanges[97] != "0x00000000000000000000000000000000000000E1" {
		t.Errorf("exchanges = %v", cfg.Exchanges)
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("rpc: https://file.example\nchain-id: 56\nbatch-size: 500\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RPCURL != "https://file.example" {
		t.Errorf("rpc = %q", cfg.RPCURL)
	}
	if cfg.ChainID != 56 {
		t.Errorf("chain id = %d, want 56", cfg.ChainID)
	}
	if cfg.BatchSize != 500 {
		t.Errorf("batch size = %d, want 500", cfg.BatchSize)
	}
}

func TestParseExchanges(t *testing.T) {
	got, err := parseExchanges(map[string]string{
		"97": "0xabc",
		"56": " 0xdef ",
	})
	if err != nil {
		t.Fatalf("parseExchanges: %v", err)
	}
	if got[97] != "0xabc" || got[56] != "0xdef" {
		t.Fatalf("unexpected map: %v", got)
	}

	if _, err := parseExchanges(map[string]string{"mainnet": "0xabc"}); err == nil {
		t.Fatal("expected error for non-numeric chain id")
	}
}

func TestParseStringMap(t *testing.T) {
	got := parseStringMap("97=0xabc, 56 = 0xdef,,broken")
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(got), got)
	}
	if got["97"] != "0xabc" || got["56"] != "0xdef" {
		t.Fatalf("unexpected map: %v", got)
	}
	if len(parseStringMap("")) != 0 {
		t.Fatal("empty input must parse to an empty map")
	}
}
