package cue

import (
	"testing"
	"time"

	"github.com/npratt/hiit/internal/timer"
)

func TestTransitionCue(t *testing.T) {
	tests := []struct {
		from, to timer.Phase
		want     Cue
		ok       bool
	}{
		{timer.PhaseWork, timer.PhaseRest, WorkComplete, true},
		{timer.PhaseRest, timer.PhaseWork, RestComplete, true},
		{timer.PhaseWork, timer.PhaseComplete, SessionComplete, true},
		{timer.PhaseReady, timer.PhaseWork, "", false},
		{timer.PhaseWork, timer.PhasePaused, "", false},
		{timer.PhasePaused, timer.PhaseRest, "", false},
		{timer.PhasePaused, timer.PhaseComplete, "", false},
		{timer.PhaseWork, timer.PhaseWork, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			got, ok := TransitionCue(tt.from, tt.to)
			if got != tt.want || ok != tt.ok {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestShouldWarn(t *testing.T) {
	for remaining := -1; remaining <= 12; remaining++ {
		want := remaining >= 1 && remaining <= 10
		if got := ShouldWarn(remaining); got != want {
			t.Errorf("ShouldWarn(%d) = %v, want %v", remaining, got, want)
		}
	}
}

func TestPattern(t *testing.T) {
	t.Run("work complete descends", func(t *testing.T) {
		tones := Pattern(WorkComplete)
		if len(tones) != 5 {
			t.Fatalf("expected 5 tones, got %d", len(tones))
		}
		for i := 1; i < len(tones); i++ {
			if tones[i].Frequency >= tones[i-1].Frequency {
				t.Errorf("tone %d does not descend: %v", i, tones)
			}
			if tones[i].Offset-tones[i-1].Offset != 150*time.Millisecond {
				t.Errorf("unexpected spacing at tone %d", i)
			}
		}
	})

	t.Run("rest complete ascends", func(t *testing.T) {
		tones := Pattern(RestComplete)
		if len(tones) != 5 {
			t.Fatalf("expected 5 tones, got %d", len(tones))
		}
		if tones[0].Frequency != 523 || tones[4].Frequency <= tones[0].Frequency {
			t.Errorf("unexpected frequencies: %v", tones)
		}
	})

	t.Run("fanfare", func(t *testing.T) {
		tones := Pattern(SessionComplete)
		want := []float64{523, 659, 784, 1047}
		if len(tones) != len(want) {
			t.Fatalf("expected %d tones, got %d", len(want), len(tones))
		}
		for i, f := range want {
			if tones[i].Frequency != f {
				t.Errorf("tone %d: expected %v Hz, got %v", i, f, tones[i].Frequency)
			}
		}
	})

	t.Run("unknown cue", func(t *testing.T) {
		if Pattern("nope") != nil {
			t.Error("expected nil pattern")
		}
	})
}
