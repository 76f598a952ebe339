package domain

import "github.com/shopspring/decimal"

type AIModel struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	Description     string          `json:"description,omitempty" yaml:"description"`
	Available       bool            `json:"available" yaml:"available"`
	SupportsVision  bool            `json:"supportsVision" yaml:"supports_vision"`
	PromptPrice     decimal.Decimal `json:"promptPrice" yaml:"prompt_price"`
	CompletionPrice decimal.Decimal `json:"completionPrice" yaml:"completion_price"`
}

// Prices are USD per 1M tokens.
func (m AIModel) IsFree() bool {
	return m.PromptPrice.IsZero() && m.CompletionPrice.IsZero()
}
