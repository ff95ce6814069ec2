package forecast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProjectLinearTrend(t *testing.T) {
	// perfectly linear: 10, 12, 14, ... over two weeks
	var obs []Point
	dates := []string{
		"2026-08-03", "2026-08-04", "2026-08-05", "2026-08-06", "2026-08-07",
		"2026-08-08", "2026-08-09", "2026-08-10", "2026-08-11", "2026-08-12",
		"2026-08-13", "2026-08-14",
	}
	for i, d := range dates {
		obs = append(obs, Point{Date: d, Count: float64(10 + 2*i)})
	}

	m := Fit(obs)
	proj := m.Project(3)
	require.Len(t, proj, 3)

	require.Equal(t, "2026-08-15", proj[0].Date)
	require.Equal(t, "2026-08-16", proj[1].Date)

	// trend continues: next values ~34, 36, 38 (weekday residuals are 0 on a perfect line)
	require.InDelta(t, 34, proj[0].Count, 0.5)
	require.InDelta(t, 36, proj[1].Count, 0.5)
	require.InDelta(t, 38, proj[2].Count, 0.5)
}

func TestProjectClampsAtZero(t *testing.T) {
	obs := []Point{
		{Date: "2026-08-01", Count: 6},
		{Date: "2026-08-02", Count: 4},
		{Date: "2026-08-03", Count: 2},
	}
	proj := Fit(obs).Project(10)
	require.Len(t, proj, 10)
	for _, p := range proj {
		require.GreaterOrEqual(t, p.Count, 0.0)
	}
	// steep downward trend hits the floor before day 10
	require.Equal(t, 0.0, proj[9].Count)
}

func TestProjectFlatWhenSparse(t *testing.T) {
	proj := Fit([]Point{{Date: "2026-08-01", Count: 5}}).Project(2)
	require.Len(t, proj, 2)
	require.Equal(t, 5.0, proj[0].Count)
	require.Equal(t, "2026-08-02", proj[0].Date)
}

func TestProjectEmptyHistory(t *testing.T) {
	proj := Fit(nil).Project(2)
	require.Len(t, proj, 2)
	for _, p := range proj {
		require.Equal(t, 0.0, p.Count)
	}
}

func TestFitFillsGapsWithZeros(t *testing.T) {
	// two observations four days apart; the gap days count as zero,
	// so the fitted trend must sit well below a straight 5→5 line
	obs := []Point{
		{Date: "2026-08-01", Count: 5},
		{Date: "2026-08-05", Count: 5},
	}
	proj := Fit(obs).Project(1)
	require.Len(t, proj, 1)
	require.Less(t, proj[0].Count, 5.0)
}
