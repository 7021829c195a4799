// Package config handles twin service configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all configuration
type Config struct {
	// Paths
	DataDir string `json:"data_dir"`

	// Server
	Server ServerConfig `json:"server"`

	// Services
	Qdrant QdrantConfig `json:"qdrant"`
	OpenAI OpenAIConfig `json:"openai"`
	Google GoogleConfig `json:"google"`

	// Persona
	Persona PersonaConfig `json:"persona"`
}

// ServerConfig for the HTTP server
type ServerConfig struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// QdrantConfig for the vector database
type QdrantConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// OpenAIConfig for chat completions and embeddings
type OpenAIConfig struct {
	APIKey     string `json:"api_key"`
	ChatModel  string `json:"chat_model"`
	EmbedModel string `json:"embed_model"`
}

// GoogleConfig for Calendar/Drive OAuth
type GoogleConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
}

// PersonaConfig describes the person the twin represents
type PersonaConfig struct {
	// Name is used in first-person prompts and the privacy refusal sentence
	Name string `json:"name"`
	// Timezone drives the time-of-day energy overlay
	Timezone string `json:"timezone"`
	// ProfileDir holds the markdown profile documents for ingestion
	ProfileDir string `json:"profile_dir"`
	// SlidesFolderID is the Drive folder scanned for slide decks (optional)
	SlidesFolderID string `json:"slides_folder_id"`
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir: filepath.Join(home, ".twin"),
		Server: ServerConfig{
			Host: "localhost",
			Port: 8000,
			AllowedOrigins: []string{
				"http://localhost:3000",
			},
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		OpenAI: OpenAIConfig{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			ChatModel:  "gpt-4o-mini",
			EmbedModel: "text-embedding-3-small",
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  "http://localhost:8000/auth/callback",
		},
		Persona: PersonaConfig{
			Name:       "Aaran",
			Timezone:   "America/Los_Angeles",
			ProfileDir: "data/profile",
		},
	}
}

// Load loads config from file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Secrets from env always win over the file
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.OpenAI.APIKey = apiKey
	}
	if id := os.Getenv("GOOGLE_CLIENT_ID"); id != "" {
		cfg.Google.ClientID = id
	}
	if secret := os.Getenv("GOOGLE_CLIENT_SECRET"); secret != "" {
		cfg.Google.ClientSecret = secret
	}

	return cfg, nil
}

// Save saves config to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	// Never write secrets to disk
	safeCfg := *c
	safeCfg.OpenAI.APIKey = ""
	safeCfg.Google.ClientSecret = ""

	data, err := json.MarshalIndent(safeCfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
