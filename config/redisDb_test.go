package config

import (
	"testing"
	"time"
)

// Startup must not hang when Redis is absent: the retry loop gives up after
// the configured attempts and the helpers keep working against nil clients.
func TestConnectRedisGivesUpAfterMaxAttempts(t *testing.T) {
	t.Setenv("REDIS_ADDRESS", "127.0.0.1:1")
	t.Setenv("REDIS_MAX_ATTEMPTS", "1")

	done := make(chan struct{})
	go func() {
		ConnectRedisWithRetry()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatal("ConnectRedisWithRetry did not return with an unreachable redis")
	}

	if GetRedisDB() != nil {
		t.Fatal("expected nil redis client after giving up")
	}
	if GetRedisLock() != nil {
		t.Fatal("expected nil lock client after giving up")
	}

	found, err := GetRedisObject("some-key", &struct{}{})
	if err != nil || found {
		t.Errorf("GetRedisObject without redis: found=%v err=%v, want miss and nil error", found, err)
	}
	if err := SetRedisObject("some-key", "value", time.Minute); err != nil {
		t.Errorf("SetRedisObject without redis: %v", err)
	}
	if err := RemoveRedisKey("some-key"); err != nil {
		t.Errorf("RemoveRedisKey without redis: %v", err)
	}
}
