package tcg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	endpoints := c.Endpoints()

	require.Len(t, endpoints, 10)
	assert.Equal(t, "One Piece", c.Default().Name)

	soon, err := c.Lookup("Mitos y leyendas (Coming soon)")
	require.NoError(t, err)
	assert.True(t, soon.ComingSoon())

	for _, e := range endpoints[:9] {
		assert.False(t, e.ComingSoon(), e.Name)
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := DefaultCatalog()

	e, err := c.Lookup("Pokémon")
	require.NoError(t, err)
	assert.Equal(t, "https://apitcg.com/api/pokemon/cards", e.URL)

	_, err = c.Lookup("Yu-Gi-Oh")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestNewCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		endpoints []Endpoint
	}{
		{"empty", nil},
		{"missing name", []Endpoint{{URL: "https://x.test"}}},
		{"duplicate", []Endpoint{{Name: "A", URL: "https://a.test"}, {Name: "A"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.endpoints)
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.yaml")
	content := `categories:
  - name: One Piece
    endpoint: https://apitcg.com/api/one-piece/cards
  - name: Future Game
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	endpoints := c.Endpoints()
	require.Len(t, endpoints, 2)
	assert.Equal(t, "https://apitcg.com/api/one-piece/cards", endpoints[0].URL)
	assert.True(t, endpoints[1].ComingSoon())
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: [unclosed"), 0o600))
	_, err = LoadCatalog(path)
	assert.Error(t, err)
}

func TestLoadCatalog_ShippedFile(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("..", "..", "configs", "tcg-categories.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog().Endpoints(), c.Endpoints())
}
