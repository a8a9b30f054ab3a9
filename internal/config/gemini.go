package config

import (
	"os"
	"sync"
)

type GeminiConfig struct {
	APIKey string
	Model  string
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			model = "gemini-1.5-flash"
		}
		geminiConfig = &GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  model,
		}
	})
	return geminiConfig
}
