package llm

import (
	"context"
	"fmt"

	"github.com/target/aihub-dashboard/internal/ports"
)

// Echo is a local provider that repeats the prompt. It needs no credentials
// and backs the dev environment and tests.
type Echo struct{}

var _ ports.ChatProvider = Echo{}

func (Echo) Name() string { return "echo" }

func (Echo) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("echo (%d earlier messages): %s", len(req.History), req.Message), nil
}
