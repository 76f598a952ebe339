package domain

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionLimitReached = errors.New("session limit reached")
	ErrMessageLimitReached = errors.New("message limit exceeded")
	ErrInvalidModel        = errors.New("invalid or unavailable model")
	ErrVisionNotSupported  = errors.New("model does not support image inputs")
	ErrInvalidImage        = errors.New("invalid image")
	ErrImageTooLarge       = errors.New("image exceeds maximum allowed size")
	ErrAPIKeyNotConfigured = errors.New("OpenRouter API key is not configured")
	ErrUpstreamService     = errors.New("AI service error")
)
