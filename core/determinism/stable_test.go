package determinism

import (
	"io"
	"math"
	"strings"
	"testing"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"9_4": 1, "2_0": 2, "38_4": 3}
	got := SortedKeys(m)
	want := []string{"2_0", "38_4", "9_4"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedKeys() = %v, want %v", got, want)
		}
	}

	var visited []string
	RangeMapSorted(m, func(k string, _ int) bool {
		visited = append(visited, k)
		return len(visited) < 2
	})
	if len(visited) != 2 || visited[0] != "2_0" {
		t.Errorf("RangeMapSorted visited %v", visited)
	}
}

func TestRoundAndFormat(t *testing.T) {
	tests := []struct {
		name   string
		in     float64
		places int32
		round  float64
		text   string
	}{
		{name: "rounds half away from zero", in: 0.12345, places: 4, round: 0.1235, text: "0.1235"},
		{name: "pads with zeros", in: 2, places: 3, round: 2, text: "2.000"},
		{name: "negative leverage", in: -0.00004, places: 4, round: 0, text: "0.0000"},
		{name: "infinite conviction", in: math.Inf(1), places: 4, round: math.Inf(1), text: "inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(tt.in, tt.places); got != tt.round && !(math.IsInf(got, 1) && math.IsInf(tt.round, 1)) {
				t.Errorf("Round() = %v, want %v", got, tt.round)
			}
			if got := FormatFixed(tt.in, tt.places); got != tt.text {
				t.Errorf("FormatFixed() = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestHashingReaderMatchesComputeHash(t *testing.T) {
	data := "UserId,ServiceId,CategoryId,CreateDate\n25446,4,5,2017-08-06 16:11:00\n"
	hr := NewHashingReader(strings.NewReader(data))
	if _, err := io.Copy(io.Discard, hr); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if hr.Sum() != ComputeHash([]byte(data)) {
		t.Error("streamed hash differs from ComputeHash")
	}
	if len(hr.Sum().Hex()) != 64 {
		t.Errorf("Hex() length = %d, want 64", len(hr.Sum().Hex()))
	}
}
