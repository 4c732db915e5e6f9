package auth_test

import (
	"testing"
	"time"

	auth "github.com/Isra8Rubio/CocktailDockerizado"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	t.Run("recent time is within the window", func(t *testing.T) {
		within, err := auth.IsWithinThresholdPeriod(time.Now().Add(-time.Hour), "24h")
		require.NoError(t, err)
		assert.True(t, within)
	})

	t.Run("old time falls outside the window", func(t *testing.T) {
		within, err := auth.IsWithinThresholdPeriod(time.Now().Add(-48*time.Hour), "24h")
		require.NoError(t, err)
		assert.False(t, within)
	})

	t.Run("invalid pattern errors", func(t *testing.T) {
		_, err := auth.IsWithinThresholdPeriod(time.Now(), "one-day")
		assert.Error(t, err)
	})
}

func TestIsOutsideThresholdPeriod(t *testing.T) {
	outside, err := auth.IsOutsideThresholdPeriod(time.Now().Add(-48*time.Hour), "24h")
	require.NoError(t, err)
	assert.True(t, outside)

	outside, err = auth.IsOutsideThresholdPeriod(time.Now(), "24h")
	require.NoError(t, err)
	assert.False(t, outside)
}
