package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
)

// LoadModels reads the model catalog from the configured yaml file, falling
// back to the built-in free-model list when no file is configured.
func LoadModels(path string) ([]domain.AIModel, error) {
	if path == "" {
		return defaultModels(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read models file: %w", err)
	}

	var doc struct {
		Models []domain.AIModel `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse models file: %w", err)
	}
	if len(doc.Models) == 0 {
		return nil, fmt.Errorf("models file %s contains no models", path)
	}
	return doc.Models, nil
}

func defaultModels() []domain.AIModel {
	return []domain.AIModel{
		{
			ID:          "z-ai/glm-4.5-air:free",
			Name:        "GLM 4.5 Air",
			Description: "Fast general-purpose model",
			Available:   true,
		},
		{
			ID:          "meta-llama/llama-3.3-70b-instruct:free",
			Name:        "Llama 3.3 70B Instruct",
			Description: "Large open-weights instruction model",
			Available:   true,
		},
		{
			ID:             "google/gemini-2.0-flash-exp:free",
			Name:           "Gemini 2.0 Flash",
			Description:    "Multimodal model with image understanding",
			Available:      true,
			SupportsVision: true,
		},
		{
			ID:             "qwen/qwen2.5-vl-32b-instruct:free",
			Name:           "Qwen 2.5 VL 32B",
			Description:    "Vision-language model",
			Available:      true,
			SupportsVision: true,
		},
	}
}
