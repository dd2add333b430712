package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLicenseKeyFormat(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		key, err := GenerateLicenseKey()
		require.NoError(t, err)
		assert.True(t, ValidLicenseKey(key), "key %q should match the grouped format", key)

		_, dup := seen[key]
		assert.False(t, dup, "key %q generated twice", key)
		seen[key] = struct{}{}
	}
}

func TestValidLicenseKey(t *testing.T) {
	assert.True(t, ValidLicenseKey("ABCD-EF23-GH45-JK67"))
	assert.True(t, ValidLicenseKey("AAAA-BBBB-CCCC-DDDD"))

	for _, key := range []string{
		"",
		"ABCDEF23GH45JK67",
		"abcd-ef23-gh45-jk67",
		"ABCD-EF23-GH45",
		"ABCD-EF23-GH45-JK678",
		"ABCD_EF23_GH45_JK67",
	} {
		assert.False(t, ValidLicenseKey(key), "key %q should be rejected", key)
	}
}
