package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		v, err := Generate(PrefixActivity)
		require.NoError(t, err)
		assert.False(t, ids[v], "ID should be unique: %s", v)
		ids[v] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"company", PrefixCompany},
		{"activity", PrefixActivity},
		{"target", PrefixTarget},
		{"session", PrefixSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Generate(tt.prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(v, tt.prefix+"-"))
			// nanoid default length is 21
			assert.Len(t, v, len(tt.prefix)+1+21)
			assert.True(t, HasPrefix(v, tt.prefix))
		})
	}
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("target-abc", PrefixTarget))
	assert.False(t, HasPrefix("target", PrefixTarget))
	assert.False(t, HasPrefix("targets-abc", PrefixTarget))
	assert.False(t, HasPrefix("activity-abc", PrefixTarget))
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		v := MustGenerate(PrefixCompany)
		assert.True(t, strings.HasPrefix(v, "company-"))
	})
}
