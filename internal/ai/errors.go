package ai

import (
	"errors"

	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

// Provider errors are defined in models so provider packages need not import ai.
var (
	ErrProviderUnavailable = models.ErrProviderUnavailable
	ErrInferenceTimeout    = models.ErrInferenceTimeout
	ErrInvalidResponse     = models.ErrInvalidResponse
	ErrProviderRateLimited = models.ErrProviderRateLimited
	ErrCreditsExhausted    = models.ErrCreditsExhausted
)

var (
	ErrNoProvider       = errors.New("no AI provider configured")
	ErrEvaluationFailed = errors.New("adoption evaluation failed")
)
