package config

import (
	_ "embed"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed programs.yaml
var programsYAML []byte

type Config struct {
	Backend   BackendConfig
	Professor ProfessorConfig
	Database  DatabaseConfig
	Programs  ProgramsConfig
}

type BackendConfig struct {
	URL string // base URL of the recognition service (e.g., http://localhost:8000)
}

// ProfessorConfig holds the credential pair for the mock professor login.
// This is a development stub, not a security boundary - a real deployment
// should resolve roles through the identity provider.
type ProfessorConfig struct {
	Username string
	Password string
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL for the stub server store
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// ProgramsConfig lists the enrollment form choices for year and session.
type ProgramsConfig struct {
	Years    []string `yaml:"years"`
	Sessions []string `yaml:"sessions"`
}

// ValidYear reports whether the given year is a known enrollment choice.
func (p *ProgramsConfig) ValidYear(year string) bool {
	return slices.Contains(p.Years, year)
}

// ValidSession reports whether the given session is a known enrollment choice.
func (p *ProgramsConfig) ValidSession(session string) bool {
	return slices.Contains(p.Sessions, session)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	var programs ProgramsConfig
	if err := yaml.Unmarshal(programsYAML, &programs); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded programs.yaml: " + err.Error())
	}

	return &Config{
		Backend: BackendConfig{
			URL: os.Getenv("BACKEND_URL"),
		},
		Professor: ProfessorConfig{
			Username: os.Getenv("PROFESSOR_USERNAME"),
			Password: os.Getenv("PROFESSOR_PASSWORD"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Programs: programs,
	}
}
