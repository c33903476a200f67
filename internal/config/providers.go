// Provider configuration - fallback order and credentials.
//
// DESIGN: The order of the providers list is the fallback order. Keys are
// read from environment variables named by keys_env (comma-separated list)
// with key_env as a single-key fallback. A provider whose variables resolve
// to no keys is kept in the list but never tried.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/compresr/edu-ai-gateway/internal/providers"
)

// ProviderSpec is one provider entry in the YAML file.
type ProviderSpec struct {
	Name    string            `yaml:"name"`
	Family  string            `yaml:"family"` // chat_completion, generate_content ("" = from name)
	BaseURL string            `yaml:"base_url"`
	Model   string            `yaml:"model"`
	KeysEnv string            `yaml:"keys_env"` // Comma-separated key list variable
	KeyEnv  string            `yaml:"key_env"`  // Single key variable, used when keys_env is empty
	Timeout time.Duration     `yaml:"timeout"`  // 0 = family default
	Headers map[string]string `yaml:"headers"`  // Static extra headers
}

// ResolveKeys reads the provider's keys from the environment.
func (p ProviderSpec) ResolveKeys() []string {
	if p.KeysEnv != "" {
		if keys := providers.ParseKeys(os.Getenv(p.KeysEnv)); len(keys) > 0 {
			return keys
		}
	}
	if p.KeyEnv != "" {
		return providers.ParseKeys(os.Getenv(p.KeyEnv))
	}
	return nil
}

// ProviderConfigs resolves every provider spec, in order.
func (c *Config) ProviderConfigs() []providers.ProviderConfig {
	out := make([]providers.ProviderConfig, 0, len(c.Providers))
	for _, p := range c.Providers {
		family := providers.Family(p.Family)
		if family == "" {
			family = providers.DefaultFamily(p.Name)
		}
		out = append(out, providers.ProviderConfig{
			Name:    p.Name,
			Family:  family,
			BaseURL: p.BaseURL,
			Model:   p.Model,
			Keys:    p.ResolveKeys(),
			Timeout: p.Timeout,
			Headers: p.Headers,
		})
	}
	return out
}

// ValidateProviders checks the provider list. Missing keys are not an error.
func (c *Config) ValidateProviders() error {
	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider %q", p.Name)
		}
		seen[p.Name] = true

		switch providers.Family(p.Family) {
		case "", providers.FamilyChatCompletion, providers.FamilyGenerateContent:
		default:
			return fmt.Errorf("provider %q: unknown family %q", p.Name, p.Family)
		}
		if p.BaseURL == "" {
			return fmt.Errorf("provider %q: base_url is required", p.Name)
		}
		if p.Model == "" {
			return fmt.Errorf("provider %q: model is required", p.Name)
		}
		if p.KeysEnv == "" && p.KeyEnv == "" {
			return fmt.Errorf("provider %q: keys_env or key_env is required", p.Name)
		}
		if p.Timeout < 0 {
			return fmt.Errorf("provider %q: timeout must not be negative", p.Name)
		}
	}
	return nil
}
