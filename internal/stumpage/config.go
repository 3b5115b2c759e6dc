package stumpage

import (
	"net/http"
	"time"
)

type Config struct {
	SourceURL    string
	RefreshCron  string // robfig/cron spec; empty disables scheduled refreshes
	FetchTimeout time.Duration
	HTTPClient   *http.Client
}

func (config Config) refreshEnabled() bool {
	return config.RefreshCron != "" && IsRemoteSource(config.SourceURL)
}

func (config Config) fetchTimeout() time.Duration {
	if config.FetchTimeout <= 0 {
		return 30 * time.Second
	}
	return config.FetchTimeout
}
