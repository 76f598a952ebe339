package service

import (
	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
)

// ModelCatalog is the static list of models requests may target. Loaded once
// at startup, never mutated afterwards.
type ModelCatalog struct {
	models []domain.AIModel
	byID   map[string]domain.AIModel
}

func NewModelCatalog(models []domain.AIModel) *ModelCatalog {
	byID := make(map[string]domain.AIModel, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}
	return &ModelCatalog{models: models, byID: byID}
}

func (c *ModelCatalog) List() []domain.AIModel {
	return c.models
}

func (c *ModelCatalog) VisionCapable() []domain.AIModel {
	var models []domain.AIModel
	for _, m := range c.models {
		if m.SupportsVision {
			models = append(models, m)
		}
	}
	return models
}

// IsValid reports whether the model exists in the catalog and is available.
func (c *ModelCatalog) IsValid(id string) bool {
	m, ok := c.byID[id]
	return ok && m.Available
}

func (c *ModelCatalog) SupportsVision(id string) bool {
	m, ok := c.byID[id]
	return ok && m.SupportsVision
}
