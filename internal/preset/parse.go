package preset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/npratt/hiit/internal/timer"
)

// ParseExample is shown to users when a description cannot be parsed.
const ParseExample = "30 min on, 30 min off for 5 hours"

// ErrParse is returned for descriptions that match no known form.
var ErrParse = errors.New("could not parse timer configuration")

const unit = `(min(?:utes?)?|hours?|sec(?:onds?)?)`

var (
	// "30 minutes on, 30 minutes off for 5 hours" or "... for 5 rounds"
	fullPattern = regexp.MustCompile(`(\d+)\s*` + unit + `\s*(?:on|work)[,\s]+(\d+)\s*` + unit + `\s*(?:off|rest)\s*(?:for\s*)?(\d+)\s*(hours?|rounds?)`)
	// "45/15 for 4 rounds", minutes
	shortPattern = regexp.MustCompile(`(\d+)/(\d+)\s*(?:for\s*)?(\d+)\s*rounds?`)
	// "1 hour work, 30 minutes rest x 3"
	altPattern = regexp.MustCompile(`(\d+)\s*` + unit + `\s*work[,\s]+(\d+)\s*` + unit + `\s*rest\s*x\s*(\d+)`)
)

// Parsed is the result of Parse. TotalTime is the requested length: for
// "for N hours" it is N hours even when whole rounds fall short of it.
type Parsed struct {
	WorkDuration int `json:"work_duration"`
	RestDuration int `json:"rest_duration"`
	TotalTime    int `json:"total_time"`
	TotalRounds  int `json:"total_rounds"`
}

// Config returns the timer configuration for the parsed description.
func (p Parsed) Config(leadIn bool) timer.Config {
	return timer.Config{
		WorkDuration: p.WorkDuration,
		RestDuration: p.RestDuration,
		TotalRounds:  p.TotalRounds,
		LeadIn:       leadIn,
	}
}

// Parse reads a natural-language timer description. Matching is case
// insensitive and the first of the three known forms that matches wins. A
// session length in hours is converted to the number of whole work+rest
// rounds that fit in it.
func Parse(input string) (Parsed, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))

	if m := fullPattern.FindStringSubmatch(normalized); m != nil {
		n, err := numbers(input, m[1], m[3], m[5])
		if err != nil {
			return Parsed{}, err
		}
		work := toSeconds(n[0], m[2])
		rest := toSeconds(n[1], m[4])
		amount := n[2]

		if strings.HasPrefix(m[6], "hour") {
			total := amount * 3600
			return Parsed{
				WorkDuration: work,
				RestDuration: rest,
				TotalTime:    total,
				TotalRounds:  timer.CalculateRounds(work, rest, total),
			}, nil
		}
		return Parsed{
			WorkDuration: work,
			RestDuration: rest,
			TotalTime:    (work + rest) * amount,
			TotalRounds:  amount,
		}, nil
	}

	if m := shortPattern.FindStringSubmatch(normalized); m != nil {
		n, err := numbers(input, m[1], m[2], m[3])
		if err != nil {
			return Parsed{}, err
		}
		work := n[0] * 60
		rest := n[1] * 60
		rounds := n[2]
		return Parsed{
			WorkDuration: work,
			RestDuration: rest,
			TotalTime:    (work + rest) * rounds,
			TotalRounds:  rounds,
		}, nil
	}

	if m := altPattern.FindStringSubmatch(normalized); m != nil {
		n, err := numbers(input, m[1], m[3], m[5])
		if err != nil {
			return Parsed{}, err
		}
		work := toSeconds(n[0], m[2])
		rest := toSeconds(n[1], m[4])
		rounds := n[2]
		return Parsed{
			WorkDuration: work,
			RestDuration: rest,
			TotalTime:    (work + rest) * rounds,
			TotalRounds:  rounds,
		}, nil
	}

	return Parsed{}, fmt.Errorf("%w %q: try %q", ErrParse, input, ParseExample)
}

func toSeconds(value int, unit string) int {
	switch {
	case strings.HasPrefix(unit, "hour"):
		return value * 3600
	case strings.HasPrefix(unit, "sec"):
		return value
	default:
		return value * 60
	}
}

// maxNumber bounds every number in a description so that converting hours
// to seconds cannot overflow.
const maxNumber = 100000

// numbers converts \d+ captures, rejecting values above maxNumber.
func numbers(input string, captures ...string) ([]int, error) {
	out := make([]int, len(captures))
	for i, c := range captures {
		n, err := strconv.Atoi(c)
		if err != nil || n > maxNumber {
			return nil, fmt.Errorf("%w %q: %s is too large", ErrParse, input, c)
		}
		out[i] = n
	}
	return out, nil
}
