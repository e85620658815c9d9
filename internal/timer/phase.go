package timer

// NextPhase returns the phase and round that follow phase when its countdown
// reaches zero. Paused and Complete are returned unchanged.
//
// The final round has no trailing rest: Work in the last round goes straight
// to Complete.
func NextPhase(phase Phase, currentRound, totalRounds int) (Phase, int) {
	switch phase {
	case PhaseReady:
		return PhaseWork, 1
	case PhaseWork:
		if currentRound >= totalRounds {
			return PhaseComplete, currentRound
		}
		return PhaseRest, currentRound
	case PhaseRest:
		return PhaseWork, currentRound + 1
	default:
		return phase, currentRound
	}
}
