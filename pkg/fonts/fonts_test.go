package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonoIsMonospace(t *testing.T) {
	f, err := Mono(12)
	require.NoError(t, err)

	w1 := f.TextWidth("iiii")
	w2 := f.TextWidth("WWWW")
	assert.Greater(t, w1, 0.0)
	assert.InDelta(t, w1, w2, 0.01)
	assert.InDelta(t, 2*f.TextWidth("ab"), f.TextWidth("abcd"), 0.01)
}

func TestMonoDefaultSize(t *testing.T) {
	f, err := Mono(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, f.Size())
	assert.NotNil(t, f.FontFace())
}

func TestMeasure(t *testing.T) {
	f, err := Mono(12)
	require.NoError(t, err)

	w, h := f.Measure([]string{"Order", "id: long", "total"}, 4)

	assert.InDelta(t, f.TextWidth("id: long")+8, w, 0.01)
	assert.InDelta(t, 3*f.Size()*LineSpacing+8, h, 0.01)

	w, h = f.Measure(nil, 4)
	assert.Equal(t, 8.0, w)
	assert.Equal(t, 8.0, h)
}
