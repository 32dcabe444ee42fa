package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// RankMode selects the ranking strategy.
const (
	ModeKeyword = "keyword"
	ModeLLM     = "llm"
)

type Config struct {
	Arxiv   Arxiv   `yaml:"arxiv"`
	Profile Profile `yaml:"profile"`
	Ranking Ranking `yaml:"ranking"`
	LLM     LLM     `yaml:"llm"`
	Output  Output  `yaml:"output"`
	Server  Server  `yaml:"server"`
}

type Arxiv struct {
	Categories []string `yaml:"categories"`
	Days       int      `yaml:"days"`
	MaxResults int      `yaml:"max_results"`
}

// Profile holds the inputs the ranking is personalized with. Changing
// either field changes the cache fingerprint.
type Profile struct {
	Keywords            []string `yaml:"keywords"`
	ResearchDescription string   `yaml:"research_description"`
}

type Ranking struct {
	Mode        string  `yaml:"mode"`
	TopN        int     `yaml:"top_n"`
	BatchSize   int     `yaml:"batch_size"`
	TitleWeight float64 `yaml:"title_weight"`
}

type LLM struct {
	Provider        string `yaml:"provider"`
	AnthropicModel  string `yaml:"anthropic_model"`
	AnthropicKeyEnv string `yaml:"anthropic_api_key_env"`
	OpenAIModel     string `yaml:"openai_model"`
	OpenAIKeyEnv    string `yaml:"openai_api_key_env"`
	OllamaModel     string `yaml:"ollama_model"`
	OllamaURL       string `yaml:"ollama_url"`
	MaxTokens       int    `yaml:"max_tokens"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

// ConfigDir returns the XDG config directory for paperfeed.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "paperfeed")
}

// DataDir returns the XDG data directory for paperfeed.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "paperfeed")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/paperfeed/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'paperfeed init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Arxiv: Arxiv{
			Categories: []string{"astro-ph.CO", "astro-ph.GA", "astro-ph.IM"},
			Days:       10,
			MaxResults: 400,
		},
		Ranking: Ranking{
			Mode:        ModeKeyword,
			TopN:        100,
			BatchSize:   25,
			TitleWeight: 3.0,
		},
		LLM: LLM{
			Provider:        "anthropic",
			AnthropicModel:  "claude-3-5-haiku-latest",
			AnthropicKeyEnv: "ANTHROPIC_API_KEY",
			OpenAIModel:     "gpt-4o-mini",
			OpenAIKeyEnv:    "OPENAI_API_KEY",
			OllamaModel:     "qwen2.5:7b",
			OllamaURL:       "http://localhost:11434",
			MaxTokens:       1024,
		},
		Server: Server{Port: 8000},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Ranking.Mode != ModeKeyword && cfg.Ranking.Mode != ModeLLM {
		return nil, fmt.Errorf("invalid ranking mode %q (want %q or %q)", cfg.Ranking.Mode, ModeKeyword, ModeLLM)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// Keywords returns the keyword list with blanks and comment lines
// removed.
func (c *Config) Keywords() []string {
	var kws []string
	for _, kw := range c.Profile.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || strings.HasPrefix(kw, "#") {
			continue
		}
		kws = append(kws, kw)
	}
	return kws
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
