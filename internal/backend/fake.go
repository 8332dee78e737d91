package backend

import (
	"context"
	"sync"
)

// Fake is a scripted backend for tests. Each call pops the next step;
// when the script is exhausted the last step repeats.
type Fake struct {
	BackendName string

	mu    sync.Mutex
	steps []FakeStep
	calls int
}

// FakeStep is one scripted response: either raw text or an error.
type FakeStep struct {
	Text string
	Err  error
}

// NewFake creates a fake backend with the given scripted steps.
func NewFake(name string, steps ...FakeStep) *Fake {
	return &Fake{BackendName: name, steps: steps}
}

func (f *Fake) Name() string {
	if f.BackendName == "" {
		return "fake"
	}
	return f.BackendName
}

// Complete returns the next scripted step.
func (f *Fake) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.calls
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	f.calls++

	if len(f.steps) == 0 {
		return "", nil
	}
	step := f.steps[idx]
	return step.Text, step.Err
}

// Calls returns how many times Complete has been invoked.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
