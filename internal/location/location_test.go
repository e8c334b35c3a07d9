package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	provinces := c.Provinces()
	require.Len(t, provinces, 24)
	assert.Equal(t, "Buenos Aires", provinces[0].Name)

	p, ok := c.Province("córdoba")
	require.True(t, ok)
	assert.Equal(t, "Córdoba", p.Name)
	assert.NotEmpty(t, c.Cities(p.ID))
}

func TestCityBelongsToProvince(t *testing.T) {
	c := Default()

	ct, ok := c.City("Buenos Aires", "La Plata")
	require.True(t, ok)
	assert.Equal(t, "1900", ct.PostalCode)
	assert.Equal(t, 1, ct.ProvinceID)

	_, ok = c.City("Mendoza", "La Plata")
	assert.False(t, ok)

	_, ok = c.City("Atlantis", "La Plata")
	assert.False(t, ok)
}

func TestPostalCodeFor(t *testing.T) {
	c := Default()
	assert.Equal(t, "7600", PostalCodeFor(c, "Buenos Aires", "Mar del Plata"))
	assert.Equal(t, "", PostalCodeFor(c, "Buenos Aires", "Tigre"))
	assert.Equal(t, "", PostalCodeFor(c, "Buenos Aires", "Nowhere"))
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte("provinces:\n  - {id: 1, name: A}\n  - {id: 2, name: a}\n"))
	assert.Error(t, err)
}
