package adk

import (
	"context"
	"fmt"
)

func NewProvider(ctx context.Context, providerName, apiKey, modelName string) (LLMProvider, error) {
	switch providerName {
	case "gemini":
		return NewGeminiProvider(ctx, apiKey, modelName)
	case "scripted":
		return NewScriptedProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
}
