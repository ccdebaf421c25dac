package locate

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/strrl/logslice/pkg/extract"
	"github.com/strrl/logslice/pkg/linesource"
)

const epoch0 = 1_700_000_000

func newExtractor(t *testing.T) *extract.Extractor {
	t.Helper()
	m, err := extract.NewRegexp(`^(\d{10}) `)
	if err != nil {
		t.Fatalf("NewRegexp: %v", err)
	}
	return extract.New(m, extract.Silent, nil)
}

func at(sec int) time.Time { return time.Unix(int64(epoch0+sec), 0).UTC() }

// buildLog returns lines whose dated entries carry non-decreasing offsets,
// with undated continuation lines mixed in, plus the offset per line (-1 when undated).
func buildLog(r *rand.Rand, n int) (linesource.Slice, []int) {
	lines := make(linesource.Slice, 0, n)
	offsets := make([]int, 0, n)
	sec := 0
	for len(lines) < n {
		if r.IntN(4) == 0 {
			lines = append(lines, "\tat com.example.Foo.bar(Foo.java:42)")
			offsets = append(offsets, -1)
			continue
		}
		sec += r.IntN(3) // zero steps produce duplicate timestamps
		lines = append(lines, fmt.Sprintf("%d INFO event", epoch0+sec))
		offsets = append(offsets, sec)
	}
	return lines, offsets
}

func firstAtOrAfter(offsets []int, target int) int {
	for i, off := range offsets {
		if off >= 0 && off >= target {
			return i
		}
	}
	return -1
}

func TestLocateMatchesLinearScan(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 20; round++ {
		lines, offsets := buildLog(r, 50+r.IntN(500))
		ex := newExtractor(t)

		b, ok, err := FindBounds(lines, ex)
		if err != nil || !ok {
			t.Fatalf("FindBounds: ok=%v err=%v", ok, err)
		}
		firstOff := offsets[b.First.Index]
		lastOff := offsets[b.Last.Index]

		for target := firstOff + 1; target <= lastOff; target++ {
			got := Locate(lines, ex, at(target), b)
			want := firstAtOrAfter(offsets, target)
			if got != want {
				t.Fatalf("round %d: Locate(+%ds) = %d, want %d", round, target, got, want)
			}
		}
		if got := Locate(lines, ex, at(firstOff), b); got != 0 {
			t.Errorf("round %d: Locate at first timestamp = %d, want 0", round, got)
		}
	}
}

func TestLocateSkewedDistribution(t *testing.T) {
	// A long quiet stretch followed by a burst defeats pure interpolation.
	var lines linesource.Slice
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("%d quiet", epoch0+i*3600))
	}
	burstStart := 10 * 3600
	for i := 0; i < 5000; i++ {
		lines = append(lines, fmt.Sprintf("%d burst", epoch0+burstStart+i/100))
	}
	ex := newExtractor(t)
	b, ok, err := FindBounds(lines, ex)
	if err != nil || !ok {
		t.Fatalf("FindBounds: ok=%v err=%v", ok, err)
	}

	got := Locate(lines, ex, at(burstStart+25), b)
	if want := 10 + 2500; got != want {
		t.Errorf("Locate = %d, want %d", got, want)
	}
}

func TestLocateNonMonotonicTerminates(t *testing.T) {
	offsets := []int{0, 50, 10, 40, 20, 30, 5, 60, 45, 100}
	lines := make(linesource.Slice, len(offsets))
	for i, off := range offsets {
		lines[i] = fmt.Sprintf("%d jitter", epoch0+off)
	}
	ex := newExtractor(t)
	b, ok, err := FindBounds(lines, ex)
	if err != nil || !ok {
		t.Fatalf("FindBounds: ok=%v err=%v", ok, err)
	}
	for target := 1; target <= 100; target++ {
		got := Locate(lines, ex, at(target), b)
		if got < 0 || got >= len(lines) {
			t.Fatalf("Locate(+%ds) = %d out of range", target, got)
		}
	}
}

// swappedLog returns an increasing sequence of offsets in which random
// neighbouring pairs are out of order, as when two writers interleave.
func swappedLog(r *rand.Rand, n int) (linesource.Slice, []int) {
	offsets := make([]int, n)
	for i := 1; i < n; i++ {
		offsets[i] = offsets[i-1] + 1 + r.IntN(20)
	}
	for i := 1; i < n-2; i++ {
		if r.IntN(10) < 3 {
			offsets[i], offsets[i+1] = offsets[i+1], offsets[i]
			i++
		}
	}
	lines := make(linesource.Slice, n)
	for i, off := range offsets {
		lines[i] = fmt.Sprintf("%d swapped", epoch0+off)
	}
	return lines, offsets
}

func TestLocateOscillationWithinOneLine(t *testing.T) {
	check := func(t *testing.T, lines linesource.Slice, offsets []int) {
		t.Helper()
		ex := newExtractor(t)
		b, ok, err := FindBounds(lines, ex)
		if err != nil || !ok {
			t.Fatalf("FindBounds: ok=%v err=%v", ok, err)
		}
		for target := offsets[0] + 1; target <= offsets[len(offsets)-1]; target++ {
			want := firstAtOrAfter(offsets, target)
			got := Locate(lines, ex, at(target), b)
			if got < want || got > want+1 {
				t.Fatalf("Locate(+%ds) = %d, first line at or after is %d", target, got, want)
			}
		}
	}

	t.Run("pairs", func(t *testing.T) {
		// 0, 10, 9, 20, 19, ...: every other line dips below its predecessor.
		offsets := []int{0}
		for k := 1; k <= 20; k++ {
			offsets = append(offsets, 10*k, 10*k-1)
		}
		offsets = append(offsets, 300)
		lines := make(linesource.Slice, len(offsets))
		for i, off := range offsets {
			lines[i] = fmt.Sprintf("%d pair", epoch0+off)
		}
		check(t, lines, offsets)
	})

	t.Run("random swaps", func(t *testing.T) {
		r := rand.New(rand.NewPCG(3, 4))
		for round := 0; round < 20; round++ {
			lines, offsets := swappedLog(r, 20+r.IntN(300))
			check(t, lines, offsets)
		}
	})
}

func TestLocateNoDatedLinesBetween(t *testing.T) {
	lines := linesource.Slice{
		fmt.Sprintf("%d start", epoch0),
		"undated",
		"undated",
		"undated",
		fmt.Sprintf("%d end", epoch0+100),
	}
	ex := newExtractor(t)
	b, _, _ := FindBounds(lines, ex)
	if got := Locate(lines, ex, at(50), b); got != 4 {
		t.Errorf("Locate = %d, want 4", got)
	}
}

func TestFindBounds(t *testing.T) {
	lines := linesource.Slice{
		"header",
		fmt.Sprintf("%d first", epoch0+5),
		fmt.Sprintf("%d middle", epoch0+6),
		fmt.Sprintf("%d last", epoch0+9),
		"trailer",
	}
	b, ok, err := FindBounds(lines, newExtractor(t))
	if err != nil || !ok {
		t.Fatalf("FindBounds: ok=%v err=%v", ok, err)
	}
	if b.First.Index != 1 || !b.First.Time.Equal(at(5)) {
		t.Errorf("First = %+v", b.First)
	}
	if b.Last.Index != 3 || !b.Last.Time.Equal(at(9)) {
		t.Errorf("Last = %+v", b.Last)
	}
}

func TestFindBoundsSingleDatedLine(t *testing.T) {
	lines := linesource.Slice{"a", fmt.Sprintf("%d only", epoch0), "b"}
	b, ok, err := FindBounds(lines, newExtractor(t))
	if err != nil || !ok {
		t.Fatalf("FindBounds: ok=%v err=%v", ok, err)
	}
	if b.First != b.Last {
		t.Errorf("expected First == Last, got %+v and %+v", b.First, b.Last)
	}
}

func TestFindBoundsNoDates(t *testing.T) {
	_, ok, err := FindBounds(linesource.Slice{"a", "b"}, newExtractor(t))
	if err != nil {
		t.Fatalf("FindBounds: %v", err)
	}
	if ok {
		t.Error("expected no bounds for an undated source")
	}
}
