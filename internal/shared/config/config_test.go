package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "bet-maker")

	cfg := Load()
	if cfg.HTTPPort != "8002" || cfg.MetricsPort != "9092" {
		t.Errorf("ports = %s/%s, want 8002/9092", cfg.HTTPPort, cfg.MetricsPort)
	}
	if cfg.ReconcileInterval != 5*time.Second {
		t.Errorf("ReconcileInterval = %v, want 5s", cfg.ReconcileInterval)
	}
	if cfg.TopicEventStatus != "event_status_updates" {
		t.Errorf("TopicEventStatus = %q", cfg.TopicEventStatus)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "line-provider")
	t.Setenv("RECONCILE_INTERVAL", "250ms")
	t.Setenv("SNAPSHOT_CACHE_TTL", "garbage")
	t.Setenv("LINE_PROVIDER_URL", "http://lp:8001/")

	cfg := Load()
	if cfg.HTTPPort != "8001" {
		t.Errorf("HTTPPort = %q, want 8001", cfg.HTTPPort)
	}
	if cfg.ReconcileInterval != 250*time.Millisecond {
		t.Errorf("ReconcileInterval = %v", cfg.ReconcileInterval)
	}
	if cfg.SnapshotCacheTTL != time.Second {
		t.Errorf("invalid duration should fall back to default, got %v", cfg.SnapshotCacheTTL)
	}
	if cfg.LineProviderURL != "http://lp:8001" {
		t.Errorf("LineProviderURL = %q", cfg.LineProviderURL)
	}
}

func TestBrokers(t *testing.T) {
	cfg := Config{KafkaBrokers: "a:9092, b:9092,,"}
	if got, want := cfg.Brokers(), []string{"a:9092", "b:9092"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Brokers() = %v, want %v", got, want)
	}
}

func TestLoadFor_DefaultService(t *testing.T) {
	t.Setenv("SERVICE_NAME", "")
	os.Unsetenv("SERVICE_NAME") // t.Setenv restaura no fim do teste

	cfg := LoadFor("line-provider")
	if cfg.ServiceName != "line-provider" || cfg.HTTPPort != "8001" || cfg.MetricsPort != "9091" {
		t.Errorf("cfg = %s %s/%s, want line-provider 8001/9091", cfg.ServiceName, cfg.HTTPPort, cfg.MetricsPort)
	}
}

func TestLoad_ZeroPeriods(t *testing.T) {
	t.Setenv("SERVICE_NAME", "bet-maker")
	t.Setenv("RECONCILE_INTERVAL", "0s")
	t.Setenv("RECONCILE_TIMEOUT", "0")
	t.Setenv("SNAPSHOT_CACHE_TTL", "0")

	cfg := Load()
	if cfg.ReconcileInterval != 5*time.Second || cfg.ReconcileTimeout != 3*time.Second {
		t.Errorf("zero periods should fall back to defaults, got %v/%v", cfg.ReconcileInterval, cfg.ReconcileTimeout)
	}
	if cfg.SnapshotCacheTTL != 0 {
		t.Errorf("SNAPSHOT_CACHE_TTL=0 disables the cache, got %v", cfg.SnapshotCacheTTL)
	}
}
