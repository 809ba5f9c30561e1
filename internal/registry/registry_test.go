package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.yaml")
	content := `services:
  - name: auth
    address: auth.internal
    port: 8081
    critical: true
  - name: search
    address: search.internal
    port: 8082
    health_path: /healthz
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	auth, ok := reg.Lookup("auth")
	require.True(t, ok)
	assert.True(t, auth.Critical)
	assert.Equal(t, "http://auth.internal:8081/health", auth.URL())

	search, ok := reg.Lookup("search")
	require.True(t, ok)
	assert.False(t, search.Critical)
	assert.Equal(t, "http://search.internal:8082/healthz", search.URL())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		name        string
		descriptors []ServiceDescriptor
	}{
		{"empty registry", nil},
		{"missing name", []ServiceDescriptor{{Address: "a", Port: 80}}},
		{"missing address", []ServiceDescriptor{{Name: "a", Port: 80}}},
		{"bad port", []ServiceDescriptor{{Name: "a", Address: "a", Port: 0}}},
		{"duplicate name", []ServiceDescriptor{
			{Name: "a", Address: "x", Port: 80},
			{Name: "a", Address: "y", Port: 81},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.descriptors)
			assert.Error(t, err)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	reg, err := New([]ServiceDescriptor{{Name: "a", Address: "x", Port: 80}})
	require.NoError(t, err)
	_, ok := reg.Lookup("missing")
	assert.False(t, ok)
}
