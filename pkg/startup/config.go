package startup

import (
	"time"

	"github.com/samsamfire/goecat/pkg/sdo"
	"gopkg.in/ini.v1"
)

const (
	DefaultPreopTimeout      = 10 * time.Second
	DefaultPreopPollInterval = 5 * time.Millisecond
	DefaultWarmupCycles      = 200
	DefaultWarmupInterval    = time.Millisecond
	DefaultOpTimeout         = 5 * time.Second
	DefaultOpPollInterval    = 10 * time.Millisecond
)

// Bring-up timings
type Config struct {
	PreopTimeout        time.Duration
	PreopPollInterval   time.Duration
	WarmupCycles        int
	WarmupInterval      time.Duration
	OpTimeout           time.Duration
	OpPollInterval      time.Duration
	VerifyIdentity      bool
	MailboxPollInterval time.Duration
	MailboxRetries      int
}

func DefaultConfig() Config {
	return Config{
		PreopTimeout:        DefaultPreopTimeout,
		PreopPollInterval:   DefaultPreopPollInterval,
		WarmupCycles:        DefaultWarmupCycles,
		WarmupInterval:      DefaultWarmupInterval,
		OpTimeout:           DefaultOpTimeout,
		OpPollInterval:      DefaultOpPollInterval,
		MailboxPollInterval: sdo.DefaultPollInterval,
		MailboxRetries:      sdo.DefaultRetries,
	}
}

func milliseconds(section *ini.Section, key string, defaultValue time.Duration) time.Duration {
	if !section.HasKey(key) {
		return defaultValue
	}
	return time.Duration(section.Key(key).MustInt64(defaultValue.Milliseconds())) * time.Millisecond
}

// Load a configuration, file can be either a path or an *os.File or []byte
// Durations are given in milliseconds, e.g.
//
//	[startup]
//	PreopTimeoutMs=10000
//	WarmupCycles=200
//	VerifyIdentity=true
//
//	[mailbox]
//	PollIntervalMs=1
//	Retries=200
//
// Missing keys keep their default value.
func LoadConfig(file any) (Config, error) {
	config := DefaultConfig()
	cfgFile, err := ini.Load(file)
	if err != nil {
		return config, err
	}
	startup := cfgFile.Section("startup")
	config.PreopTimeout = milliseconds(startup, "PreopTimeoutMs", config.PreopTimeout)
	config.PreopPollInterval = milliseconds(startup, "PreopPollIntervalMs", config.PreopPollInterval)
	config.WarmupCycles = startup.Key("WarmupCycles").MustInt(config.WarmupCycles)
	config.WarmupInterval = milliseconds(startup, "WarmupIntervalMs", config.WarmupInterval)
	config.OpTimeout = milliseconds(startup, "OpTimeoutMs", config.OpTimeout)
	config.OpPollInterval = milliseconds(startup, "OpPollIntervalMs", config.OpPollInterval)
	config.VerifyIdentity = startup.Key("VerifyIdentity").MustBool(config.VerifyIdentity)

	mailbox := cfgFile.Section("mailbox")
	config.MailboxPollInterval = milliseconds(mailbox, "PollIntervalMs", config.MailboxPollInterval)
	config.MailboxRetries = mailbox.Key("Retries").MustInt(config.MailboxRetries)
	return config, nil
}
