package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"lesson-server/services/chat-api/internal/infrastructure/logger"
)

const (
	DefaultModelCredentialFile = "config/model_credentials.yml"

	// StandardCredentialName is the fallback credential set used when a model
	// type does not resolve to a dedicated set.
	StandardCredentialName = "standard"
)

// ModelCredential is one named credential set for the upstream chat provider.
type ModelCredential struct {
	Name    string
	APIKey  string
	BaseURL string
}

// ModelCredentialConfig maintains the named credential sets loaded at startup.
type ModelCredentialConfig struct {
	sets map[string]ModelCredential
}

// Resolve returns the credential set with the given name.
func (c *ModelCredentialConfig) Resolve(name string) (ModelCredential, bool) {
	if c == nil {
		return ModelCredential{}, false
	}
	cred, ok := c.sets[strings.TrimSpace(name)]
	return cred, ok
}

// Standard returns the standard credential set.
func (c *ModelCredentialConfig) Standard() (ModelCredential, bool) {
	return c.Resolve(StandardCredentialName)
}

// LoadModelCredentialConfig parses the yaml file at the provided path.
// Values support ${VAR} and ${VAR:-default} expansion.
func LoadModelCredentialConfig(path string) (*ModelCredentialConfig, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model credential config path is empty")
	}

	log := logger.GetLogger()
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read model credential config %q: %w", cleanPath, err)
	}
	log.Info().Str("path", cleanPath).Msg("loading model credential config file")

	return ParseModelCredentialConfig(data)
}

// ParseModelCredentialConfig parses yaml credential data.
func ParseModelCredentialConfig(data []byte) (*ModelCredentialConfig, error) {
	var doc modelCredentialDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse model credential config: %w", err)
	}
	if len(doc.Credentials) == 0 {
		return nil, errors.New("model credential config has no credentials defined")
	}

	result := &ModelCredentialConfig{sets: make(map[string]ModelCredential)}
	for rawName, entry := range doc.Credentials {
		name := strings.TrimSpace(rawName)
		if name == "" {
			continue
		}
		apiKey := strings.TrimSpace(expandWithDefault(entry.APIKey))
		if apiKey == "" {
			// Unset secrets leave the set undefined so that lookups fall
			// through to the standard set.
			continue
		}
		result.sets[name] = ModelCredential{
			Name:    name,
			APIKey:  apiKey,
			BaseURL: strings.TrimSpace(expandWithDefault(entry.BaseURL)),
		}
	}

	if _, ok := result.sets[StandardCredentialName]; !ok {
		return nil, fmt.Errorf("model credential config must define a %q set", StandardCredentialName)
	}

	return result, nil
}

type modelCredentialDocument struct {
	Credentials map[string]modelCredentialEntry `yaml:"credentials"`
}

type modelCredentialEntry struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// expandWithDefault expands every ${VAR} and ${VAR:-default} occurrence using
// os envs. Bare $VAR references are handled by os.ExpandEnv.
func expandWithDefault(raw string) string {
	if !strings.Contains(raw, "${") {
		return os.ExpandEnv(raw)
	}

	var b strings.Builder
	rest := raw
	for {
		start := strings.Index(rest, "${")
		if start == -1 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}")
		if end == -1 {
			b.WriteString(rest)
			break
		}
		end += start

		b.WriteString(rest[:start])
		expr := rest[start+2 : end]
		varName, defaultVal := expr, ""
		if idx := strings.Index(expr, ":-"); idx != -1 {
			varName, defaultVal = expr[:idx], expr[idx+2:]
		}
		val := os.Getenv(varName)
		if val == "" {
			val = defaultVal
		}
		b.WriteString(val)
		rest = rest[end+1:]
	}
	return os.ExpandEnv(b.String())
}
