// Package ai holds the registry of generation service presets.
package ai

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
)

func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

func ProvidersPath() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".veoscene", "providers.yaml")
}

// Provider client families.
const (
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
)

// ProviderConfig is one generation service preset. It never carries a key.
type ProviderConfig struct {
	Name         string   `yaml:"name" json:"name"`
	Label        string   `yaml:"label,omitempty" json:"label"`
	Type         string   `yaml:"type" json:"type"`
	BaseURL      string   `yaml:"base_url" json:"base_url"`
	DefaultModel string   `yaml:"default_model" json:"default_model"`
	Models       []string `yaml:"models,omitempty" json:"models,omitempty"`
	// KeyPrefix is the literal every key of this service starts with. Empty disables the check.
	KeyPrefix string `yaml:"key_prefix,omitempty" json:"key_prefix,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty" json:"api_key_env,omitempty"`
	// SupportsJSONSchema marks services that accept a json_schema response format.
	SupportsJSONSchema bool `yaml:"supports_json_schema,omitempty" json:"supports_json_schema"`
}

// DisplayName is Label, falling back to Name.
func (p *ProviderConfig) DisplayName() string {
	if strings.TrimSpace(p.Label) != "" {
		return p.Label
	}
	return p.Name
}

// Model returns override when set, else the preset default.
func (p *ProviderConfig) Model(override string) string {
	if m := strings.TrimSpace(override); m != "" {
		return m
	}
	return p.DefaultModel
}

func builtinProviders() []*ProviderConfig {
	return []*ProviderConfig{
		{
			Name:               "openai",
			Label:              "OpenAI",
			Type:               TypeOpenAI,
			BaseURL:            "https://api.openai.com/v1",
			DefaultModel:       "gpt-4o",
			Models:             []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1"},
			KeyPrefix:          "sk-",
			APIKeyEnv:          "OPENAI_API_KEY",
			SupportsJSONSchema: true,
		},
		{
			Name:         "deepseek",
			Label:        "DeepSeek",
			Type:         TypeOpenAI,
			BaseURL:      "https://api.deepseek.com/v1",
			DefaultModel: "deepseek-chat",
			Models:       []string{"deepseek-chat", "deepseek-reasoner"},
			KeyPrefix:    "sk-",
			APIKeyEnv:    "DEEPSEEK_API_KEY",
		},
		{
			Name:         "qwen",
			Label:        "Qwen",
			Type:         TypeOpenAI,
			BaseURL:      "https://dashscope.aliyuncs.com/compatible-mode/v1",
			DefaultModel: "qwen-plus",
			Models:       []string{"qwen-plus", "qwen-max"},
			KeyPrefix:    "sk-",
			APIKeyEnv:    "DASHSCOPE_API_KEY",
		},
		{
			Name:         "kimi",
			Label:        "Kimi",
			Type:         TypeOpenAI,
			BaseURL:      "https://api.moonshot.cn/v1",
			DefaultModel: "moonshot-v1-32k",
			Models:       []string{"moonshot-v1-32k", "moonshot-v1-128k"},
			KeyPrefix:    "sk-",
			APIKeyEnv:    "MOONSHOT_API_KEY",
		},
		{
			Name:         "anthropic",
			Label:        "Anthropic",
			Type:         TypeAnthropic,
			BaseURL:      "https://api.anthropic.com/v1",
			DefaultModel: "claude-sonnet-4-5",
			KeyPrefix:    "sk-ant-",
			APIKeyEnv:    "ANTHROPIC_API_KEY",
		},
	}
}

// DefaultProvider is the preset used when nothing else is configured.
const DefaultProvider = "openai"

type Registry struct {
	providers map[string]*ProviderConfig
	order     []string
}

type providersFile struct {
	Providers []*ProviderConfig `yaml:"providers"`
}

// NewRegistry returns a registry with the built-in presets only.
func NewRegistry() *Registry {
	r := &Registry{providers: make(map[string]*ProviderConfig)}
	for _, p := range builtinProviders() {
		r.add(p)
	}
	return r
}

// LoadRegistry returns the built-in presets overlaid with providers.yaml, if present.
func LoadRegistry() (*Registry, error) {
	return LoadRegistryFromPath(ProvidersPath())
}

func LoadRegistryFromPath(path string) (*Registry, error) {
	r := NewRegistry()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read providers.yaml: %w", err)
	}

	var pf providersFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse providers.yaml: %w", err)
	}

	for _, p := range pf.Providers {
		if err := r.merge(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(p *ProviderConfig) {
	if _, exists := r.providers[p.Name]; !exists {
		r.order = append(r.order, p.Name)
	}
	r.providers[p.Name] = p
}

// merge overlays the non-empty fields of p onto an existing preset, or adds a new one.
func (r *Registry) merge(p *ProviderConfig) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("providers.yaml: provider without a name")
	}
	p.Name = name

	base, ok := r.providers[name]
	if !ok {
		if p.Type != TypeOpenAI && p.Type != TypeAnthropic {
			return fmt.Errorf("providers.yaml: provider %s has unsupported type %q", name, p.Type)
		}
		if p.BaseURL == "" || p.DefaultModel == "" {
			return fmt.Errorf("providers.yaml: provider %s needs base_url and default_model", name)
		}
		r.add(p)
		return nil
	}

	merged := *base
	if p.Label != "" {
		merged.Label = p.Label
	}
	if p.Type != "" {
		if p.Type != TypeOpenAI && p.Type != TypeAnthropic {
			return fmt.Errorf("providers.yaml: provider %s has unsupported type %q", name, p.Type)
		}
		merged.Type = p.Type
	}
	if p.BaseURL != "" {
		merged.BaseURL = p.BaseURL
	}
	if p.DefaultModel != "" {
		merged.DefaultModel = p.DefaultModel
	}
	if len(p.Models) > 0 {
		merged.Models = p.Models
	}
	if p.KeyPrefix != "" {
		merged.KeyPrefix = p.KeyPrefix
	}
	if p.APIKeyEnv != "" {
		merged.APIKeyEnv = p.APIKeyEnv
	}
	if p.SupportsJSONSchema {
		merged.SupportsJSONSchema = true
	}
	r.add(&merged)
	return nil
}

func (r *Registry) GetProvider(name string) (*ProviderConfig, bool) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// ListProviders returns presets in registration order.
func (r *Registry) ListProviders() []*ProviderConfig {
	out := make([]*ProviderConfig, 0, len(r.order))
	for _, name := range r.order {
		if p, ok := r.providers[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Names returns the preset names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) GetDefaultProvider() *ProviderConfig {
	if p, ok := r.providers[DefaultProvider]; ok {
		return p
	}
	if len(r.order) == 0 {
		return nil
	}
	return r.providers[r.order[0]]
}
