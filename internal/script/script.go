package script

import "context"

// Generator produces narration scripts and the key moments used to
// illustrate them.
type Generator interface {
	GenerateScript(ctx context.Context, subject, sport, extra string) (string, error)
	ExtractKeyMoments(ctx context.Context, subject, sport, scriptText string, count int) ([]string, error)
}
