package module

import (
	"time"

	"contextual/internal/platform/config"
	"contextual/internal/services/backfill/guardrails"
	"contextual/internal/services/backfill/service"
)

// FromConfig reads the backfill options from config with the EMBED_BACKFILL_ prefix
func FromConfig(cfg config.Conf) service.Config {
	bf := cfg.Prefix("EMBED_BACKFILL_")
	return service.Config{
		Batch:        bf.MayInt("BATCH", 32),
		Limit:        bf.MayInt("LIMIT", 1000),
		RetryDelay:   bf.MayDuration("RETRY_DELAY", 2*time.Second),
		MaxDescRunes: bf.MayInt("DESC_MAX_RUNES", 4000),
		ADFDepth:     bf.MayInt("ADF_MAX_DEPTH", 64),
		Timeouts: guardrails.Timeouts{
			Batch: bf.MayDuration("BATCH_TIMEOUT", 5*time.Minute),
			Embed: bf.MayDuration("EMBED_TIMEOUT", 60*time.Second),
		},
	}
}
