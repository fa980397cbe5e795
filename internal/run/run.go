// Package run wires the gate, fetcher, composer, and notifier into the
// single linear pipeline a daybrief invocation executes.
package run

import (
	"context"
	"fmt"
	"time"

	"github.com/antigravity-dev/daybrief/internal/digest"
	"github.com/antigravity-dev/daybrief/internal/gate"
	"github.com/antigravity-dev/daybrief/internal/telegram"
	"github.com/antigravity-dev/daybrief/internal/todoist"
)

// Outcome tells main how a run finished short of an error.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeSent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	default:
		return "skipped"
	}
}

// Fetcher supplies the digest inputs: labeled tasks and the project index.
type Fetcher interface {
	FetchDigest(ctx context.Context) ([]todoist.Task, todoist.ProjectIndex, error)
}

// Notifier delivers the composed message.
type Notifier interface {
	SendMessage(ctx context.Context, text string) (telegram.Ack, error)
}

// Result captures what a completed run did. Decision is always populated;
// the remaining fields are meaningful only for OutcomeSent.
type Result struct {
	Outcome   Outcome
	Decision  gate.Decision
	TaskCount int
	Message   string
	Ack       telegram.Ack
}

// Runner executes one gate → fetch → compose → send pass. Steps run strictly
// in sequence; the first error aborts the run. Nothing is retried and nothing
// survives the run.
type Runner struct {
	Gate     *gate.Gate
	Fetcher  Fetcher
	Notifier Notifier

	// Now is the clock seam for tests; nil means time.Now.
	Now func() time.Time
}

// Execute runs the pipeline once. A closed gate is a normal result, not an
// error. Fetch and send failures come back with the failing phase wrapped in
// so main can log one meaningful line.
func (r *Runner) Execute(ctx context.Context) (Result, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	decision := r.Gate.EvaluateAt(now())
	if !decision.Proceed {
		return Result{Outcome: OutcomeSkipped, Decision: decision}, nil
	}

	tasks, index, err := r.Fetcher.FetchDigest(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch digest: %w", err)
	}

	message := digest.Compose(tasks, index, decision.LocalTime)

	ack, err := r.Notifier.SendMessage(ctx, message)
	if err != nil {
		return Result{}, fmt.Errorf("send digest: %w", err)
	}

	return Result{
		Outcome:   OutcomeSent,
		Decision:  decision,
		TaskCount: len(tasks),
		Message:   message,
		Ack:       ack,
	}, nil
}
