package feedback

import (
	"context"
	"fmt"

	"tutorfeed/internal/llm"
)

// BackendError wraps a generation backend failure. The pipeline never lets
// a raw SDK error cross the service boundary.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("feedback generation failed: %v", e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Config holds generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for report generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.3,
	}
}

// Service drafts parent-facing feedback reports. It holds no cross-request
// state beyond the provider handle; concurrent calls need no coordination.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a feedback generation service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Generate drafts the raw report text for the given student. past must be
// ordered oldest to newest; the current session is not part of it. The
// returned text is unparsed — callers run ParseSections as a separate,
// separately-testable stage.
//
// No trend computation happens here: the prompt renders raw history and
// asks the model to describe the change itself, and with any past session
// at all the two-record minimum is already met, so an insufficient-history
// fallback would be dead code. Display surfaces call ComputeTrend directly.
func (s *Service) Generate(ctx context.Context, student Student, current Session, past []Session) (string, error) {
	ctx = llm.WithPurpose(ctx, "feedback")

	prompt := Compose(student, current, past, len(past) == 0)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: prompt.System,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt.User},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", &BackendError{Err: err}
	}

	return resp.Text(), nil
}
