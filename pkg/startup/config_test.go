package startup

import (
	"testing"
	"time"

	"github.com/samsamfire/goecat/pkg/sdo"
	"github.com/stretchr/testify/assert"
)

const TEST_CONFIG = `
[startup]
PreopTimeoutMs=2500
WarmupCycles=50
OpPollIntervalMs=20
VerifyIdentity=true

[mailbox]
Retries=400
`

func TestLoadConfig(t *testing.T) {
	t.Run("values and defaults", func(t *testing.T) {
		cfg, err := LoadConfig([]byte(TEST_CONFIG))
		assert.Nil(t, err)
		assert.Equal(t, 2500*time.Millisecond, cfg.PreopTimeout)
		assert.Equal(t, 50, cfg.WarmupCycles)
		assert.Equal(t, 20*time.Millisecond, cfg.OpPollInterval)
		assert.True(t, cfg.VerifyIdentity)
		assert.Equal(t, 400, cfg.MailboxRetries)
		assert.Equal(t, DefaultPreopPollInterval, cfg.PreopPollInterval)
		assert.Equal(t, DefaultWarmupInterval, cfg.WarmupInterval)
		assert.Equal(t, DefaultOpTimeout, cfg.OpTimeout)
		assert.Equal(t, sdo.DefaultPollInterval, cfg.MailboxPollInterval)
	})
	t.Run("empty file", func(t *testing.T) {
		cfg, err := LoadConfig([]byte(""))
		assert.Nil(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig("does-not-exist.ini")
		assert.NotNil(t, err)
	})
}
