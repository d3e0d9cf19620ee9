package auth

import (
	"testing"
	"time"

	"github.com/polkiloo/storefront/internal/config"
)

func TestNewTokenStrategy(t *testing.T) {
	strategy, err := newTokenStrategy(strategyParams{Config: &config.Config{SessionSecret: "top-secret", SessionTTL: time.Hour}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hmacStrategy, ok := strategy.(*HMACStrategy)
	if !ok {
		t.Fatalf("expected *HMACStrategy, got %T", strategy)
	}
	want, _ := DeriveKey("top-secret", cookieKeyInfo)
	if string(hmacStrategy.key) != string(want) {
		t.Fatal("expected key derived from session secret")
	}
	if hmacStrategy.ttl != time.Hour {
		t.Fatalf("unexpected ttl: %s", hmacStrategy.ttl)
	}

	if _, err := newTokenStrategy(strategyParams{Config: &config.Config{}}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
