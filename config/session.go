package config

import "time"

// SessionConfig bounds the session registry's remote calls.
type SessionConfig struct {
	// InitTimeout bounds the initial session resolution when a tracker is
	// created. A request that exhausts it is treated as signed out.
	InitTimeout time.Duration `env:"INIT_TIMEOUT" envDefault:"5s"`

	// FetchTimeout bounds each profile refetch triggered by an identity
	// change.
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"5s"`

	// ReapInterval is how often the registry sweeps for idle trackers.
	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"1m"`

	// IdleTTL is how long a session tracker may go without a request before
	// the sweep drops it. The session itself stays valid in the store; the
	// tracker is rebuilt on the next request.
	IdleTTL time.Duration `env:"IDLE_TTL" envDefault:"30m"`
}

// Sanitize clamps session timeouts to sane values.
func (s *SessionConfig) Sanitize() {
	if s.InitTimeout <= 0 {
		s.InitTimeout = 5 * time.Second
	}
	if s.FetchTimeout <= 0 {
		s.FetchTimeout = 5 * time.Second
	}
	if s.ReapInterval <= 0 {
		s.ReapInterval = time.Minute
	}
	if s.IdleTTL <= 0 {
		s.IdleTTL = 30 * time.Minute
	}
}
