package startupx

import (
	"context"
	"fmt"

	"github.com/mealforge/recipe-service/pkg/errorx"
	"github.com/mealforge/recipe-service/pkg/logx"
)

// Step - one named unit of the startup sequence.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// A Sequence runs startup steps strictly in order with short-circuit
// failure semantics: a step starts only after every previous step
// succeeded, and the first failure aborts the remaining steps.
type Sequence struct {
	name  string
	steps []Step
}

// NewSequence creates a new sequence including the steps as configured.
func NewSequence(name string, steps ...Step) *Sequence {
	return &Sequence{name: name, steps: steps}
}

// Run - execute the steps in order. Returns nil when every step succeeded,
// otherwise the first failure wrapped with the failing step's name.
func (s *Sequence) Run(ctx context.Context) error {
	for _, step := range s.steps {
		logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Sequence: %s, Step: %s, starting", s.name, step.Name))

		if err := step.Run(ctx); err != nil {
			return errorx.NewStartupErrorWrapper(err, "sequence '%s' aborted at step '%s'", s.name, step.Name)
		}

		logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Sequence: %s, Step: %s, completed", s.name, step.Name))
	}

	return nil
}
