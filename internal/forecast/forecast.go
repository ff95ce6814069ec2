// Package forecast projects daily posting volume forward. The model is a
// least-squares linear trend over the day index plus an additive weekday
// offset (mean residual per weekday), which covers the strong Mon-Fri
// rhythm job boards show without any tuning knobs.
package forecast

import (
	"math"
	"sort"
	"time"
)

type Point struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Count float64 `json:"count"`
}

type Model struct {
	intercept float64
	slope     float64
	weekday   [7]float64 // additive offset per time.Weekday
	lastDate  time.Time
	lastValue float64
	trainLen  int
	flat      bool // not enough history for a trend
}

const dayLayout = "2006-01-02"

// Fit builds a model from observed daily counts. Points are sorted by
// date; gaps are treated as zero-count days so a sparse week does not
// masquerade as a dense one.
func Fit(observed []Point) *Model {
	m := &Model{}
	if len(observed) == 0 {
		m.flat = true
		return m
	}

	pts := make([]Point, len(observed))
	copy(pts, observed)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Date < pts[j].Date })

	first, err1 := time.Parse(dayLayout, pts[0].Date)
	last, err2 := time.Parse(dayLayout, pts[len(pts)-1].Date)
	if err1 != nil || err2 != nil {
		m.flat = true
		m.lastValue = pts[len(pts)-1].Count
		return m
	}

	byDate := make(map[string]float64, len(pts))
	for _, p := range pts {
		byDate[p.Date] += p.Count
	}

	// dense series, zero-filled
	var xs []float64
	var ys []float64
	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		xs = append(xs, float64(len(xs)))
		ys = append(ys, byDate[d.Format(dayLayout)])
		days = append(days, d)
	}

	m.lastDate = last
	m.lastValue = ys[len(ys)-1]

	if len(xs) < 2 {
		m.flat = true
		return m
	}

	// least squares y = intercept + slope*x
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		m.flat = true
		return m
	}
	m.slope = (n*sumXY - sumX*sumY) / den
	m.intercept = (sumY - m.slope*sumX) / n

	// weekday offsets from trend residuals
	var resSum [7]float64
	var resCnt [7]float64
	for i := range xs {
		wd := days[i].Weekday()
		resSum[wd] += ys[i] - (m.intercept + m.slope*xs[i])
		resCnt[wd]++
	}
	for wd := 0; wd < 7; wd++ {
		if resCnt[wd] > 0 {
			m.weekday[wd] = resSum[wd] / resCnt[wd]
		}
	}

	m.trainLen = len(xs)
	return m
}

// Project emits horizon points starting the day after the last observation.
// Counts are clamped at zero; postings can't go negative.
func (m *Model) Project(horizon int) []Point {
	if m == nil || horizon <= 0 {
		return nil
	}

	start := m.lastDate
	if start.IsZero() {
		start = time.Now().UTC().Truncate(24 * time.Hour)
	}

	out := make([]Point, 0, horizon)
	for i := 1; i <= horizon; i++ {
		d := start.AddDate(0, 0, i)

		var y float64
		if m.flat {
			y = m.lastValue
		} else {
			x := float64(m.trainLen - 1 + i)
			y = m.intercept + m.slope*x + m.weekday[d.Weekday()]
		}
		y = math.Max(0, y)

		out = append(out, Point{Date: d.Format(dayLayout), Count: round1(y)})
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
