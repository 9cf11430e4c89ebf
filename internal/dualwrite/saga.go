package dualwrite

import (
	"context"
	"log/slog"
)

// step is one unit of the write saga. compensate may be nil when a step
// has nothing to undo.
type step struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
	success    State
	failure    State
}

// saga runs steps in order. When a step fails, the compensations of that step
// and every completed step run in reverse order and the failed step is returned.
type saga struct {
	steps  []step
	logger *slog.Logger
}

func (s *saga) execute(ctx context.Context, advance func(State, string)) (*step, error) {
	for i := range s.steps {
		st := &s.steps[i]

		if err := st.run(ctx); err != nil {
			s.unwind(ctx, i)
			return st, err
		}
		advance(st.success, st.name)
	}
	return nil, nil
}

func (s *saga) unwind(ctx context.Context, failed int) {
	for i := failed; i >= 0; i-- {
		st := s.steps[i]
		if st.compensate == nil {
			continue
		}
		if err := st.compensate(ctx); err != nil {
			s.logger.Error("compensation failed", "step", st.name, "error", err)
			continue
		}
		s.logger.Info("compensation applied", "step", st.name)
	}
}
