package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Last    *sessionSchema `toml:"last,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported sessions schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	ID          string `toml:"id"`
	PoolName    string `toml:"pool_name"`
	Username    string `toml:"username"`
	Endpoint    string `toml:"endpoint,omitempty"`
	Outcome     string `toml:"outcome"`
	Code        int    `toml:"code"`
	StartedAt   string `toml:"started_at"`
	FinishedAt  string `toml:"finished_at"`
	LaunchedAt  string `toml:"launched_at,omitempty"`
	LaunchError string `toml:"launch_error,omitempty"`
}
