package config

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

type Service struct {
	config *Config

	mu      sync.RWMutex
	version atomic.Int64
}

type UpdateUserConfigOptions struct {
	UpdateFile bool
}

func NewService(cfg *Config) *Service {
	return &Service{config: cfg}
}

func (s *Service) RetrieveUserConfig() (*UserConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := *s.config.UserConfig
	return &clone, nil
}

// Version increments whenever the user config changes. Operations that
// depend on the config snapshot it at the start and re-check instead of
// subscribing to change events.
func (s *Service) Version() int64 {
	return s.version.Load()
}

func (s *Service) UpdateUserConfig(userConfig *UserConfig, opts UpdateUserConfigOptions) error {
	if !opts.UpdateFile {
		// No updates.
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := saveUserConfigFile(userConfig, s.config.UserConfigFilePath)
	if err != nil {
		return errors.WithStack(err)
	}

	*s.config.UserConfig = *userConfig
	s.version.Add(1)

	return nil
}
