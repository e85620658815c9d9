package testutil

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"
)

func TestSampleEventLog_IsValidJSONLines(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader(SampleEventLog))
	lines := 0
	for scanner.Scan() {
		var v map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &v); err != nil {
			t.Errorf("line %d is not valid JSON: %v", lines+1, err)
		}
		if _, ok := v["type"]; !ok {
			t.Errorf("line %d has no type", lines+1)
		}
		lines++
	}
	if lines != 4 {
		t.Errorf("expected 4 lines, got %d", lines)
	}
}
