package config

import "time"

// NewForTest returns a config with defaults suitable for unit tests. Tests
// override the fields they exercise.
func NewForTest() *Config {
	return &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 1,
		DatabaseConnectRetryDelay: 10 * time.Millisecond,
		DatabaseMaxRetries:        5,
		ServerPort:                0,
		WorkerProcesses:           1,
		JobMaxAttempts:            3,
		UserConfig:                loadDefaultUserConfig(),
	}
}
