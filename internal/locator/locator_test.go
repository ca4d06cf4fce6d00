package locator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Locator
	}{
		{"css", "css selector=#a > b", Locator{ByCSSSelector, "#a > b"}},
		{"id", "id=login", Locator{ByID, "login"}},
		{"value_with_equals", "xpath=//input[@name='q']", Locator{ByXPath, "//input[@name='q']"}},
		{"value_with_first_split_only", "name=a=b=c", Locator{ByName, "a=b=c"}},
		{"empty_value", "tag name=", Locator{ByTagName, ""}},
		{"link_text", "link text=Sign in", Locator{ByLinkText, "Sign in"}},
		{"partial_link_text", "partial link text=Sign", Locator{ByPartialLinkText, "Sign"}},
		{"class", "class name=btn", Locator{ByClassName, "btn"}},
		{"active", "active=true", Locator{Active, "true"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"bogus=x", "CSS SELECTOR=#a", "Id=x", "no-separator", "", "=value"} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, ErrLocatorParse, "input %q", input)
	}
}

func TestLocatorPayload(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(MustParse("css selector=#main"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"using":"css selector","value":"#main"}`, string(data))

	assert.Panics(t, func() { MustParse("bogus=x") })
}
