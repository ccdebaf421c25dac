// Package locate finds where a time window starts in a mostly time-ordered
// log without reading it front to back.
//
// Locate runs an interpolation search: it assumes timestamps grow roughly
// linearly with line index and probes where the target should be, falling
// back to bisection whenever a probe fails to halve the remaining range.
// Undated lines are stepped over, and a search over non-monotonic data still
// terminates because the bracket shrinks on every probe. When adjacent lines
// are out of order the result is at most one line past the first line at or
// after the target.
package locate

import (
	"log/slog"
	"math"
	"time"

	"github.com/strrl/logslice/pkg/extract"
	"github.com/strrl/logslice/pkg/linesource"
)

// Sample is a line index with its timestamp.
type Sample struct {
	Index int
	Time  time.Time
}

// Bounds are the first and last dated lines of a source.
type Bounds struct {
	First Sample
	Last  Sample
}

// FindBounds scans forward from the first line and backward from the last
// for dated lines. Both scans apply the extractor's policy, so an Abort policy
// may return an error. It reports false when no line is dated.
func FindBounds(src linesource.Source, ex *extract.Extractor) (Bounds, bool, error) {
	var b Bounds
	n := src.Len()

	first := -1
	for i := 0; i < n; i++ {
		line, ok := src.Line(i)
		if !ok {
			break
		}
		t, ok, err := ex.Extract(line, i)
		if err != nil {
			return Bounds{}, false, err
		}
		if ok {
			b.First = Sample{Index: i, Time: t}
			first = i
			break
		}
	}
	if first < 0 {
		return Bounds{}, false, nil
	}

	b.Last = b.First
	for i := n - 1; i > first; i-- {
		line, ok := src.Line(i)
		if !ok {
			continue
		}
		t, ok, err := ex.Extract(line, i)
		if err != nil {
			return Bounds{}, false, err
		}
		if ok {
			b.Last = Sample{Index: i, Time: t}
			break
		}
	}
	return b, true, nil
}

// Locate returns the index of the first dated line whose timestamp is at or
// after start, assuming timestamps do not decrease. It returns 0 when start is
// not after b.First, and b.Last.Index when start is after b.Last; callers
// exclude the latter case before calling.
//
// Probes use Peek, so speculative reads never trigger the policy.
func Locate(src linesource.Source, ex *extract.Extractor, start time.Time, b Bounds) int {
	if !start.After(b.First.Time) {
		return 0
	}
	if start.After(b.Last.Time) {
		return b.Last.Index
	}

	// low.Time < start <= high.Time throughout.
	low, high := b.First, b.Last
	bisect := false
	probes := 0
	for high.Index-low.Index > 1 {
		width := high.Index - low.Index

		var guess int
		if bisect {
			guess = low.Index + width/2
		} else {
			guess = interpolate(low, high, start)
		}
		guess = max(low.Index+1, min(guess, high.Index-1))

		s, ok := nearestDated(src, ex, guess, low.Index, high.Index)
		probes++
		if !ok {
			break
		}
		if s.Time.Before(start) {
			low = s
		} else {
			high = s
		}

		// A step that fails to halve the bracket means the data is not linear
		// here; bisect next, then try interpolating again.
		bisect = !bisect && (high.Index-low.Index)*2 > width
	}

	// A line that dipped below start just before the boundary hides an
	// earlier line that already reached it.
	result := high.Index
	if low.Index > b.First.Index {
		if prev, ok := datedBefore(src, ex, low.Index, b.First.Index); ok && !prev.Time.Before(start) {
			result = prev.Index
		}
	}

	slog.Debug("located window start", "index", result, "probes", probes)
	return result
}

// datedBefore returns the last dated line before i and after lo.
func datedBefore(src linesource.Source, ex *extract.Extractor, i, lo int) (Sample, bool) {
	for j := i - 1; j > lo; j-- {
		line, ok := src.Line(j)
		if !ok {
			continue
		}
		if t, ok := ex.Peek(line); ok {
			return Sample{Index: j, Time: t}, true
		}
	}
	return Sample{}, false
}

func interpolate(low, high Sample, start time.Time) int {
	span := float64(high.Time.Sub(low.Time))
	if span <= 0 {
		return low.Index
	}
	frac := float64(start.Sub(low.Time)) / span
	return low.Index + int(math.Floor(float64(high.Index-low.Index)*frac))
}

// nearestDated returns the first dated line at or after guess and before hi,
// or failing that the last dated line before guess and after lo.
func nearestDated(src linesource.Source, ex *extract.Extractor, guess, lo, hi int) (Sample, bool) {
	for i := guess; i < hi; i++ {
		line, ok := src.Line(i)
		if !ok {
			break
		}
		if t, ok := ex.Peek(line); ok {
			return Sample{Index: i, Time: t}, true
		}
	}
	for i := guess - 1; i > lo; i-- {
		line, ok := src.Line(i)
		if !ok {
			continue
		}
		if t, ok := ex.Peek(line); ok {
			return Sample{Index: i, Time: t}, true
		}
	}
	return Sample{}, false
}
