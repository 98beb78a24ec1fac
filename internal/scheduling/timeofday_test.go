package scheduling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	cases := map[string]int{
		"07:30":  450,
		"7:30":   450,
		" 9:05 ": 545,
		"9":      540,
		"21:30":  1290,
		"00:00":  0,
	}
	for raw, want := range cases {
		got, err := ParseTime(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseTimeMalformed(t *testing.T) {
	for _, raw := range []string{"", "ab:00", "9:xx", "24:00", "10:60", "-1:00"} {
		_, err := ParseTime(raw)
		require.Error(t, err, raw)
		var malformed *MalformedTimeError
		assert.True(t, errors.As(err, &malformed), raw)
	}
}

func TestFormatTimeRoundTrip(t *testing.T) {
	for _, raw := range []string{"07:30", "08:00", "12:45", "21:30"} {
		minutes, err := ParseTime(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, FormatTime(minutes))
	}
	assert.Equal(t, "09:00", FormatTime(540))
}

func TestNormalizeTime(t *testing.T) {
	got, err := NormalizeTime("8:30")
	require.NoError(t, err)
	assert.Equal(t, "08:30", got)

	_, err = NormalizeTime("noon")
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	d, err := Duration("09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, 90, d)

	d, err = Duration("10:30", "09:00")
	require.NoError(t, err)
	assert.Equal(t, -90, d)
}

func TestWithinWindow(t *testing.T) {
	assert.True(t, WithinWindow(450, 1290))
	assert.False(t, WithinWindow(420, 480))
	assert.False(t, WithinWindow(1260, 1320))
}

func TestTimeRangeNormalize(t *testing.T) {
	r, err := TimeRange{Start: "9:00", End: "10:30"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "09:00-10:30", r.String())
}
