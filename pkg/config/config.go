// Package config loads the application configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lecture-notes/pkg/chunker"
)

type Config struct {
	Transcription TranscriptionConfig `yaml:"transcription"`
	Generation    GenerationConfig    `yaml:"generation"`
	Chunking      ChunkingConfig      `yaml:"chunking"`
	Mongo         MongoConfig         `yaml:"mongo"`
	Archive       ArchiveConfig       `yaml:"archive"`
	Export        ExportConfig        `yaml:"export"`
}

type TranscriptionConfig struct {
	// APIKey authorizes the hosted transcription endpoint.
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type GenerationConfig struct {
	// APIKeys rotate on rate limit responses.
	APIKeys []string `yaml:"api_keys"`
	Model   string   `yaml:"model"`
	Workers int      `yaml:"workers"`
}

type ChunkingConfig struct {
	MaxSize int `yaml:"max_size"`
	Overlap int `yaml:"overlap"`
}

type MongoConfig struct {
	ConnectionString string `yaml:"connection_string"`
	Database         string `yaml:"database"`
	Collection       string `yaml:"collection"`
}

type ArchiveConfig struct {
	// DSN of the archive Postgres. Leave empty to disable archiving.
	PostgresDSN string `yaml:"postgres_dsn"`

	// Supabase-hosted alternative; used when PostgresDSN is empty.
	SupabaseURL      string `yaml:"supabase_url"`
	SupabaseKey      string `yaml:"supabase_key"`
	SupabasePassword string `yaml:"supabase_password"`
}

type ExportConfig struct {
	// Dir receives exported notes, quizzes, and flashcard TSV files.
	Dir string `yaml:"dir"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if len(c.Generation.APIKeys) == 0 {
		return fmt.Errorf("generation.api_keys is required")
	}
	if c.Mongo.ConnectionString == "" {
		return fmt.Errorf("mongo.connection_string is required")
	}

	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-1"
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gemini-2.5-flash"
	}
	if c.Generation.Workers == 0 {
		c.Generation.Workers = 4
	}
	if c.Chunking.MaxSize == 0 {
		c.Chunking.MaxSize = chunker.DefaultMaxSize
	}
	if c.Chunking.Overlap == 0 {
		c.Chunking.Overlap = chunker.DefaultOverlap
	}
	if c.Chunking.MaxSize <= c.Chunking.Overlap {
		return fmt.Errorf("chunking.max_size must be greater than chunking.overlap")
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "lecturenotes"
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = "lectures"
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "exports"
	}

	return nil
}
