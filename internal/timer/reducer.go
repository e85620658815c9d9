package timer

// The functions in this file are the only way a State changes. Each takes the
// current snapshot and returns the next one; the Engine applies them under
// its lock, so no closure ever observes a stale state.

// Tick advances a running session by one second.
func Tick(s State) State {
	if !s.IsRunning {
		return s
	}
	if s.TimeRemaining > 1 {
		s.TimeRemaining--
		return s
	}
	return advance(s, s.Phase)
}

// Start marks the session running. It has no effect on a paused or
// completed session.
func Start(s State) State {
	if s.Phase == PhasePaused || s.Phase == PhaseComplete {
		return s
	}
	s.IsRunning = true
	return s
}

// Pause interrupts the session, remembering the interrupted phase. Pausing
// an already paused session keeps the original remembered phase.
func Pause(s State) State {
	switch s.Phase {
	case PhaseComplete:
		return s
	case PhasePaused:
		s.IsRunning = false
		return s
	}
	s.PausedFrom = s.Phase
	s.Phase = PhasePaused
	s.IsRunning = false
	return s
}

// Resume restores the phase interrupted by Pause and restarts the countdown.
func Resume(s State) State {
	if s.Phase != PhasePaused {
		return s
	}
	s.Phase = s.PausedFrom
	if s.Phase == "" {
		s.Phase = PhaseWork
	}
	s.PausedFrom = ""
	s.IsRunning = true
	return s
}

// Skip ends the current phase immediately. While paused, the remembered phase
// is advanced and the session stays paused.
func Skip(s State) State {
	switch s.Phase {
	case PhaseComplete:
		return s
	case PhasePaused:
		next, round := NextPhase(s.PausedFrom, s.CurrentRound, s.TotalRounds)
		if next == PhaseComplete {
			return complete(s)
		}
		s.PausedFrom = next
		s.CurrentRound = round
		s.TimeRemaining = s.Config.durationFor(next)
		return s
	}
	return advance(s, s.Phase)
}

// AddRound extends the session by one round.
func AddRound(s State) State {
	if s.Phase == PhaseComplete {
		return s
	}
	s.TotalRounds++
	return s
}

// RemoveRound shortens the session by one round. Rounds that have started or
// finished cannot be removed, nor can the work interval that a rest in
// progress leads into.
func RemoveRound(s State) State {
	if s.Phase == PhaseComplete {
		return s
	}
	floor := s.CurrentRound
	if s.ActivePhase() == PhaseRest {
		floor++
	}
	s.TotalRounds = max(floor, s.TotalRounds-1)
	return s
}

// advance moves the session out of phase using the transition table.
func advance(s State, phase Phase) State {
	next, round := NextPhase(phase, s.CurrentRound, s.TotalRounds)
	if next == PhaseComplete {
		return complete(s)
	}
	s.Phase = next
	s.CurrentRound = round
	s.TimeRemaining = s.Config.durationFor(next)
	return s
}

func complete(s State) State {
	s.Phase = PhaseComplete
	s.PausedFrom = ""
	s.TimeRemaining = 0
	s.IsRunning = false
	return s
}
