package engine

import "github.com/draftden/draftden/internal/database/draft/model"

// DefaultSteps is the standard cadence for a pack: pick then pass,
// repeated, with no pass after the final pick. The emptied pack retires
// instead of being handed to a neighbor.
func DefaultSteps(packSize int) []model.Step {
	steps := make([]model.Step, 0, 2*packSize-1)
	for i := 0; i < packSize; i++ {
		if i > 0 {
			steps = append(steps, model.Step{Action: model.StepPass, Amount: 1})
		}
		steps = append(steps, model.Step{Action: model.StepPick, Amount: 1})
	}
	return steps
}

// Flatten expands step amounts into single-action steps. Pass steps keep
// their amount so multi-seat passes survive flattening.
func Flatten(steps []model.Step) []model.Step {
	flat := make([]model.Step, 0, len(steps))
	for _, step := range steps {
		amount := step.Amount
		if amount <= 0 {
			amount = 1
		}
		if step.Action == model.StepPass {
			flat = append(flat, model.Step{Action: model.StepPass, Amount: amount})
			continue
		}
		for i := 0; i < amount; i++ {
			flat = append(flat, model.Step{Action: step.Action})
		}
	}
	return flat
}

// StepQueue concatenates the per-round step lists into the queue a seat
// consumes over the whole draft. Template overrides the default cadence
// for every round it covers; a short template falls back to defaults for
// the remaining rounds.
func StepQueue(rounds, packSize int, template [][]model.Step) []model.Step {
	var queue []model.Step
	for round := 0; round < rounds; round++ {
		if round < len(template) && len(template[round]) > 0 {
			queue = append(queue, Flatten(template[round])...)
			continue
		}
		queue = append(queue, Flatten(DefaultSteps(packSize))...)
	}
	return queue
}
