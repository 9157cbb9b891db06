package cam

import (
	"testing"

	"github.com/gcodekit5/gcodekit5/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxParams() BoxParams {
	return BoxParams{
		Params:      testParams(),
		Width:       120,
		Depth:       80,
		Height:      60,
		Thickness:   6,
		FingerWidth: 12,
		Kerf:        3,
	}
}

func TestBoxPanelsSixClosedOutlines(t *testing.T) {
	panels, err := BoxPanels(boxParams())
	require.NoError(t, err)
	require.Len(t, panels, 6)

	for _, panel := range panels {
		assert.GreaterOrEqual(t, len(panel.Outline), 4, "panel %s", panel.Name)
		assert.Greater(t, panel.Outline.Area(), 0.0, "panel %s must enclose area", panel.Name)
	}
}

func TestBoxPanelsDoNotOverlapInLayout(t *testing.T) {
	panels, err := BoxPanels(boxParams())
	require.NoError(t, err)
	for i := 0; i < len(panels); i++ {
		for j := i + 1; j < len(panels); j++ {
			bi := panels[i].Bounds()
			bj := panels[j].Bounds()
			assert.False(t, bi.Intersects(bj), "panels %s and %s overlap", panels[i].Name, panels[j].Name)
		}
	}
}

func TestOddFingerCount(t *testing.T) {
	cases := []struct {
		length, target float64
		want           int
	}{
		{100, 12, 9},
		{100, 25, 5},
		{100, 10, 11},
		{20, 50, 3},
	}
	for _, c := range cases {
		got := oddFingerCount(c.length, c.target)
		assert.Equal(t, c.want, got, "length=%v target=%v", c.length, c.target)
		assert.Equal(t, 1, got%2, "finger count must be odd")
	}
}

func TestTabbedBoxRejectsThickMaterial(t *testing.T) {
	prm := boxParams()
	prm.Thickness = 40 // >= height/2
	_, err := TabbedBox(prm)
	require.Error(t, err)
}

func TestTabbedBoxDeterministic(t *testing.T) {
	a, err := TabbedBox(boxParams())
	require.NoError(t, err)
	b, err := TabbedBox(boxParams())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFingerEdgeEndpoints(t *testing.T) {
	from, to := geo.Pt(0, 0), geo.Pt(100, 0)
	male := fingerEdge(from, to, 6, 12, true)
	require.GreaterOrEqual(t, len(male), 2)
	assert.True(t, male[0].AlmostEqual(from), "male edge starts at the outline corner")
	assert.True(t, male[len(male)-1].AlmostEqual(to), "male edge ends at the outline corner")

	female := fingerEdge(from, to, 6, 12, false)
	assert.InDelta(t, 6, female[0].Y, 1e-9, "female edge starts recessed")
	assert.InDelta(t, 6, female[len(female)-1].Y, 1e-9, "female edge ends recessed")
}
