package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(id string) Config {
	return Config{
		ID:      id,
		BaseURL: "https://" + id + ".gr",
		RateLimit: RateLimit{
			Requests:   30,
			PerMinutes: 1,
		},
		Pagination: Pagination{
			Type:     "query",
			Param:    "page",
			MaxPages: 20,
		},
		Selectors: Selectors{"list": ".listing-card"},
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry([]Config{validConfig("xe"), validConfig("spitogatos")})
	require.NoError(t, err)

	pc, err := r.Get("spitogatos")
	require.NoError(t, err)
	assert.Equal(t, "https://spitogatos.gr", pc.BaseURL)

	assert.Equal(t, []string{"spitogatos", "xe"}, r.IDs())
}

func TestGetUnknownPlatform(t *testing.T) {
	r, err := NewRegistry([]Config{validConfig("xe")})
	require.NoError(t, err)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestNewRegistryValidation(t *testing.T) {
	missing := validConfig("xe")
	missing.BaseURL = ""
	_, err := NewRegistry([]Config{missing})
	assert.Error(t, err)

	noRate := validConfig("xe")
	noRate.RateLimit.Requests = 0
	_, err = NewRegistry([]Config{noRate})
	assert.Error(t, err)

	_, err = NewRegistry([]Config{validConfig("xe"), validConfig("xe")})
	assert.Error(t, err)
}
