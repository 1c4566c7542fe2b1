package engine

// axisOutcome is the verdict for one axis of a tick's displacement.
type axisOutcome uint8

const (
	axisOpen axisOutcome = iota
	// axisSolid: out of bounds, wall or void.
	axisSolid
	// axisGated: a gate vetoed the axis, opened or not.
	axisGated
	// axisFatal: an interaction killed the player.
	axisFatal
)

// resolveMovement moves the player for one tick of input dir. X is resolved
// before Y so a blocked axis does not stop the other one (wall sliding).
// Once an axis requests a transition the remaining axis is skipped. A fatal
// axis undoes the whole tick's movement: the player dies where the tick
// started.
func resolveMovement(w *world, rules *Rules, dir Vector, res *TickResult) Transition {
	step := dir.Clamp().Scale(rules.Speed)
	start := w.player

	hitSolid, hitGate := false, false
	for _, delta := range [2]Vector{{X: step.X}, {Y: step.Y}} {
		if delta.IsZero() {
			continue
		}
		candidate := w.player.Add(delta)
		outcome, tr := resolveAxis(w, rules, candidate, res)
		switch outcome {
		case axisOpen:
			w.player = candidate
			res.Moved = true
		case axisSolid:
			hitSolid = true
		case axisGated:
			hitGate = true
		case axisFatal:
			w.player = start
			res.Moved = false
		}
		if tr != NoTransition {
			return tr
		}
	}

	if hitSolid && !hitGate && !res.Moved {
		w.say(rules.Messages.Wall)
	}
	return NoTransition
}

// resolveAxis checks the box at candidate against the grid. Blocking is
// decided for every overlapped cell before any interaction runs, so an axis
// stopped by a wall or gate never touches the inventory.
func resolveAxis(w *world, rules *Rules, candidate Vector, res *TickResult) (axisOutcome, Transition) {
	cells := BoxAround(candidate, rules.HalfSize).Cells()

	for _, c := range cells {
		if !w.grid.InBounds(c.X, c.Y) || BlockingOf(w.grid.At(c.X, c.Y)) == Solid {
			return axisSolid, NoTransition
		}
	}

	for _, c := range cells {
		if BlockingOf(w.grid.At(c.X, c.Y)) == Gated {
			return axisGated, openGate(w, rules, c, res)
		}
	}

	for _, c := range cells {
		if tr := interact(w, rules, c, res); tr != NoTransition {
			return axisFatal, tr
		}
	}
	return axisOpen, NoTransition
}
