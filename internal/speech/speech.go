// Package speech turns narration text into audio. Synthesis is
// asynchronous: Synthesize kicks off the job and returns the URL the
// audio will appear at, which callers poll until it is fetchable.
package speech

import "context"

type Synthesizer interface {
	Synthesize(ctx context.Context, text, id string) (audioURL string, err error)
}
