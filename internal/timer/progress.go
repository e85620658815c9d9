package timer

// TotalTime returns the length of a session in seconds. The final round has
// no rest, so rest is counted rounds-1 times.
func TotalTime(workDuration, restDuration, rounds int) int {
	return workDuration*rounds + restDuration*max(0, rounds-1)
}

// CalculateRounds returns how many whole work+rest rounds fit in totalTime.
func CalculateRounds(workDuration, restDuration, totalTime int) int {
	roundDuration := workDuration + restDuration
	if roundDuration <= 0 {
		return 0
	}
	return totalTime / roundDuration
}

// Elapsed returns the seconds of session time that have passed. The Ready
// lead-in never counts. A paused session is measured as if the remembered
// phase were still active.
func Elapsed(s State) int {
	if s.Phase == PhaseComplete {
		return TotalTime(s.Config.WorkDuration, s.Config.RestDuration, s.TotalRounds)
	}

	work := s.Config.WorkDuration
	rest := s.Config.RestDuration

	var current int
	switch s.ActivePhase() {
	case PhaseWork:
		current = work - s.TimeRemaining
	case PhaseRest:
		current = work + (rest - s.TimeRemaining)
	default:
		return 0
	}

	completed := (s.CurrentRound - 1) * (work + rest)
	return completed + max(0, current)
}

// Remaining returns the seconds left in the session.
func Remaining(s State) int {
	total := TotalTime(s.Config.WorkDuration, s.Config.RestDuration, s.TotalRounds)
	return max(0, total-Elapsed(s))
}

// Progress returns the fraction of the session completed, in [0, 1]. It is
// measured against the current TotalRounds, so adding a round lowers it and
// removing one raises it.
func Progress(s State) float64 {
	total := TotalTime(s.Config.WorkDuration, s.Config.RestDuration, s.TotalRounds)
	if total <= 0 {
		return 0
	}
	p := float64(Elapsed(s)) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
