package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaKindJSONStringForm(t *testing.T) {
	b, err := json.Marshal(MediaKindSeries)
	require.NoError(t, err)
	assert.Equal(t, `"series"`, string(b))

	var k MediaKind
	require.NoError(t, json.Unmarshal([]byte(`"movie"`), &k))
	assert.Equal(t, MediaKindMovie, k)

	// Accept the upstream endpoint's name for series.
	require.NoError(t, json.Unmarshal([]byte(`"tv"`), &k))
	assert.Equal(t, MediaKindSeries, k)

	assert.Error(t, json.Unmarshal([]byte(`"widget"`), &k))
}

func TestSearchResultYear(t *testing.T) {
	assert.Equal(t, "1999", SearchResult{ReleaseDate: "1999-03-30"}.Year())
	assert.Equal(t, "2008", SearchResult{FirstAirDate: "2008-01-20"}.Year())
	assert.Equal(t, "", SearchResult{}.Year())
	assert.Equal(t, "", SearchResult{ReleaseDate: "99"}.Year())
}

func TestDisplayTitlePrefersTitle(t *testing.T) {
	assert.Equal(t, "Dune", SearchResult{Title: "Dune", Name: "ignored"}.DisplayTitle())
	assert.Equal(t, "Severance", SearchResult{Name: "Severance"}.DisplayTitle())
}
