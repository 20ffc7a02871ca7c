package keytask_test

import (
	"testing"

	"github.com/alkime/soundboard/internal/keytask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysKeyFor(t *testing.T) {
	tests := []struct {
		mod  keytask.Modifier
		loc  keytask.Location
		want keytask.SysKey
	}{
		{keytask.ModShift, keytask.LocationLeft, 0xA0},
		{keytask.ModShift, keytask.LocationRight, 0xA1},
		{keytask.ModControl, keytask.LocationLeft, 0xA2},
		{keytask.ModControl, keytask.LocationRight, 0xA3},
		{keytask.ModAlt, keytask.LocationLeft, 0xA4},
		{keytask.ModAlt, keytask.LocationRight, 0xA5},
		{keytask.ModAlt, keytask.LocationUnknown, keytask.SysNone},
		{keytask.Modifier("Meta"), keytask.LocationLeft, keytask.SysNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.mod)+"/"+tt.loc.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, keytask.SysKeyFor(tt.mod, tt.loc))
		})
	}
}

func TestEncode(t *testing.T) {
	t.Run("left shift + A", func(t *testing.T) {
		code := keytask.Encode(keytask.SysLeftShift, 65)
		assert.Equal(t, keytask.Code(705), code)
		assert.Equal(t, "705 (0x2C1)", code.String())
	})

	t.Run("no modifier keeps the primary code", func(t *testing.T) {
		assert.Equal(t, keytask.Code(0x41), keytask.Encode(keytask.SysNone, 0x41))
	})

	t.Run("right alt + F5", func(t *testing.T) {
		assert.Equal(t, keytask.Code(0xA5<<2|0x74), keytask.Encode(keytask.SysRightAlt, 0x74))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t,
			keytask.Encode(keytask.SysLeftControl, 0x31),
			keytask.Encode(keytask.SysLeftControl, 0x31))
	})
}

func TestValidKey(t *testing.T) {
	assert.True(t, keytask.ValidKey(65))
	assert.True(t, keytask.ValidKey(keytask.MaxKey))
	assert.False(t, keytask.ValidKey(0))
	assert.False(t, keytask.ValidKey(-1))
	assert.False(t, keytask.ValidKey(705), "would collide with left shift + A")
}

func TestLocationFromCode(t *testing.T) {
	assert.Equal(t, keytask.LocationLeft, keytask.LocationFromCode("ControlLeft"))
	assert.Equal(t, keytask.LocationRight, keytask.LocationFromCode("AltRight"))
	assert.Equal(t, keytask.LocationUnknown, keytask.LocationFromCode("KeyA"))
	assert.Equal(t, keytask.LocationUnknown, keytask.LocationFromCode(""))
}

func TestParseModifier(t *testing.T) {
	mod, ok := keytask.ParseModifier("Control")
	require.True(t, ok)
	assert.Equal(t, keytask.ModControl, mod)

	_, ok = keytask.ParseModifier("a")
	assert.False(t, ok)
}

func TestRuneKey(t *testing.T) {
	k, shifted, ok := keytask.RuneKey('a')
	require.True(t, ok)
	assert.False(t, shifted)
	assert.Equal(t, keytask.Key{Code: "KeyA", Name: "a", VK: 65}, k)

	k, shifted, ok = keytask.RuneKey('A')
	require.True(t, ok)
	assert.True(t, shifted)
	assert.Equal(t, 65, k.VK)

	k, shifted, ok = keytask.RuneKey('7')
	require.True(t, ok)
	assert.False(t, shifted)
	assert.Equal(t, 0x37, k.VK)

	k, shifted, ok = keytask.RuneKey('?')
	require.True(t, ok)
	assert.True(t, shifted)
	assert.Equal(t, keytask.Key{Code: "Slash", Name: "?", VK: 0xBF}, k)

	_, _, ok = keytask.RuneKey('é')
	assert.False(t, ok)
}

func TestNamedKey(t *testing.T) {
	k, ok := keytask.NamedKey("F1")
	require.True(t, ok)
	assert.Equal(t, 0x70, k.VK)

	k, ok = keytask.NamedKey("F24")
	require.True(t, ok)
	assert.Equal(t, 0x87, k.VK)

	_, ok = keytask.NamedKey("F25")
	assert.False(t, ok)

	_, ok = keytask.NamedKey("Fx")
	assert.False(t, ok)

	k, ok = keytask.NamedKey("ArrowUp")
	require.True(t, ok)
	assert.Equal(t, 0x26, k.VK)
}
