package worker

import (
	"testing"
	"time"

	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/pkg/config"
)

func TestComposeSettingsWithoutConfig(t *testing.T) {
	policy, renderTimeout, tempDir := composeSettings(nil)

	if policy != vo.DefaultRetryPolicy() {
		t.Errorf("policy = %+v, want defaults", policy)
	}
	if renderTimeout != 0 || tempDir != "" {
		t.Errorf("renderTimeout = %v tempDir = %q, want zero values", renderTimeout, tempDir)
	}
}

func TestComposeSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Compose.MaxAttempts = 5
	cfg.Compose.RetryBaseDelay = 2 * time.Second
	cfg.Compose.RetryMaxDelay = 20 * time.Second
	cfg.Compose.RenderTimeout = 3 * time.Minute
	cfg.Compose.FFmpeg.TempDir = "/var/tmp/compose"

	policy, renderTimeout, tempDir := composeSettings(cfg)

	if policy.MaxAttempts != 5 || policy.BaseDelay != 2*time.Second || policy.MaxDelay != 20*time.Second {
		t.Errorf("policy = %+v, not taken from config", policy)
	}
	if renderTimeout != 3*time.Minute {
		t.Errorf("renderTimeout = %v, want 3m", renderTimeout)
	}
	if tempDir != "/var/tmp/compose" {
		t.Errorf("tempDir = %q", tempDir)
	}
}
