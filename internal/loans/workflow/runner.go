package workflow

import (
	"context"
	"fmt"

	domainevents "credsaathi_backend/internal/events"
	"credsaathi_backend/internal/loans/agent"
	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/platform/apperr"
	"credsaathi_backend/platform/events"
	"credsaathi_backend/platform/logger"
)

// maxTransitions bounds a single turn. The longest legal path is
// master > sales > verification > underwriting > fraud > sanction >
// master_final, so anything longer means a routing bug.
const maxTransitions = 8

// Runner executes one conversational turn: it walks the pipeline from the
// master stage until the router yields END or the workflow is marked
// complete.
type Runner struct {
	agents map[domain.Stage]agent.Agent
	bus    events.Bus
	log    *logger.Logger
}

func NewRunner(agents []agent.Agent, bus events.Bus, log *logger.Logger) (*Runner, error) {
	byStage := make(map[domain.Stage]agent.Agent, len(agents))
	for _, a := range agents {
		if _, dup := byStage[a.Stage()]; dup {
			return nil, apperr.Internal(fmt.Sprintf("duplicate agent for stage %s", a.Stage()))
		}
		byStage[a.Stage()] = a
	}
	return &Runner{agents: byStage, bus: bus, log: log}, nil
}

// Run processes the state through the pipeline. The state is mutated in
// place; callers own any persistence of the result.
func (r *Runner) Run(ctx context.Context, state *domain.ApplicationState) error {
	stage := domain.StageMaster

	for hops := 0; hops < maxTransitions; hops++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		a, ok := r.agents[stage]
		if !ok {
			return apperr.Internal(fmt.Sprintf("no agent registered for stage %s", stage))
		}

		r.log.StageEvent(state.SessionID.String(), string(stage), "started")
		if err := a.Run(ctx, state); err != nil {
			r.log.StageEvent(state.SessionID.String(), string(stage), "failed")
			return err
		}
		r.log.StageEvent(state.SessionID.String(), string(stage), "completed")

		if r.bus != nil {
			r.bus.Publish(ctx, domainevents.StageCompleted{
				BaseEvent: events.NewBaseEvent(),
				SessionID: state.SessionID,
				Stage:     stage,
				Status:    state.LoanStatus,
			})
		}

		next := Next(stage, state)
		if next == domain.StageEnd {
			return nil
		}
		if state.WorkflowComplete {
			return nil
		}
		stage = next
	}

	return apperr.Internal(fmt.Sprintf("pipeline exceeded %d transitions for session %s", maxTransitions, state.SessionID))
}
