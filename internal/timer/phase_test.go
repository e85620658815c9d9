package timer

import "testing"

func TestNextPhase(t *testing.T) {
	tests := []struct {
		name      string
		phase     Phase
		round     int
		total     int
		wantPhase Phase
		wantRound int
	}{
		{"ready to work", PhaseReady, 1, 5, PhaseWork, 1},
		{"work to rest keeps round", PhaseWork, 2, 5, PhaseRest, 2},
		{"rest to work next round", PhaseRest, 2, 5, PhaseWork, 3},
		{"final work completes", PhaseWork, 5, 5, PhaseComplete, 5},
		{"work past total completes", PhaseWork, 6, 5, PhaseComplete, 6},
		{"single round completes", PhaseWork, 1, 1, PhaseComplete, 1},
		{"paused is identity", PhasePaused, 3, 5, PhasePaused, 3},
		{"complete is identity", PhaseComplete, 5, 5, PhaseComplete, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phase, round := NextPhase(tt.phase, tt.round, tt.total)
			if phase != tt.wantPhase {
				t.Errorf("phase = %q, want %q", phase, tt.wantPhase)
			}
			if round != tt.wantRound {
				t.Errorf("round = %d, want %d", round, tt.wantRound)
			}
		})
	}
}

func TestPhaseLabel(t *testing.T) {
	if got := PhaseReady.Label(); got != "GET READY" {
		t.Errorf("ready label = %q", got)
	}
	if got := PhaseWork.Label(); got != "WORK" {
		t.Errorf("work label = %q", got)
	}
	if got := Phase("bogus").Label(); got != "" {
		t.Errorf("unknown label = %q, want empty", got)
	}
}
