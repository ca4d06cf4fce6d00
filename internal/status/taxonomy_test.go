package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		kind Kind
	}{
		{0, Success},
		{6, NoSuchDriver},
		{7, NoSuchElement},
		{8, NoSuchFrame},
		{9, UnknownCommand},
		{10, StaleElementReference},
		{11, ElementNotVisible},
		{12, InvalidElementState},
		{13, UnknownError},
		{15, ElementIsNotSelectable},
		{17, JavaScriptError},
		{19, XPathLookupError},
		{21, Timeout},
		{23, NoSuchWindow},
		{24, InvalidCookieDomain},
		{25, UnableToSetCookie},
		{26, UnexpectedAlertOpen},
		{27, NoAlertOpenError},
		{28, ScriptTimeout},
		{29, InvalidElementCoordinates},
		{30, IMENotAvailable},
		{31, IMEEngineActivationFailed},
		{32, InvalidSelector},
		{33, SessionNotCreatedException},
		{34, MoveTargetOutOfBounds},
	}

	for _, tt := range tests {
		entry, ok := Lookup(tt.code)
		require.True(t, ok, "code %d", tt.code)
		assert.Equal(t, tt.code, entry.Code)
		assert.Equal(t, tt.kind, entry.Kind)
		assert.NotEmpty(t, entry.Description)
	}

	assert.Len(t, Codes(), len(tests))
}

func TestLookupDescriptions(t *testing.T) {
	t.Parallel()

	entry, ok := Lookup(7)
	require.True(t, ok)
	assert.Equal(t, "An element could not be located on the page using the given search parameters.", entry.Description)

	entry, ok = Lookup(0)
	require.True(t, ok)
	assert.True(t, entry.IsSuccess())
	assert.Equal(t, "The command executed successfully.", entry.Description)
}

func TestLookupUnknownCode(t *testing.T) {
	t.Parallel()

	for _, code := range []int{14, 1, -1, 35, 100} {
		_, ok := Lookup(code)
		assert.False(t, ok, "code %d", code)

		_, err := Resolve(code)
		assert.ErrorIs(t, err, ErrUnknownStatusCode)
	}
}
