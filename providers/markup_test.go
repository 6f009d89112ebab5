package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := map[string]string{
		"<jats:p>Trastuzumab &amp; beta-blockers.</jats:p>": "Trastuzumab & beta-blockers.",
		"Effect of <i>dexrazoxane</i>\n  on LVEF":          "Effect of dexrazoxane on LVEF",
		"":                                                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripMarkup(in), in)
	}
}
