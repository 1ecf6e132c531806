package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/garden-serde/pkg/serde/format"
	"github.com/lk2023060901/garden-serde/pkg/serde/mapper"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

func TestBeforeInit(t *testing.T) {
	app := New()
	assert.Nil(t, app.Config())
	assert.Same(t, mapper.Default(), app.Mapper())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Gatherer())
}

func TestInitDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	app := New()
	require.NoError(t, app.Init(""))
	assert.Equal(t, format.ContentTypeJSON, app.Config().Mapper.DefaultContentType)
	assert.NotSame(t, mapper.Default(), app.Mapper())

	data, err := app.Mapper().Serialize([]byte{1, 2, 3}, "")
	require.NoError(t, err)
	assert.Equal(t, `"AQID"`, string(data))

	_, err = app.Gatherer().Gather()
	assert.NoError(t, err)
	_ = app.Close()
}

func TestInitFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serde.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mapper:\n  default-content-type: cbor\n  inclusion: always\nlog:\n  level: warn\n"), 0o600))
	t.Setenv(ConfigPathEnv, path)

	app := New()
	require.NoError(t, app.Init(""))
	assert.Equal(t, "cbor", app.Config().Mapper.DefaultContentType)
	assert.Equal(t, format.ContentTypeCBOR, app.Mapper().ContentType(""))
	assert.Equal(t, "warn", app.Config().Log.Level)
}

func TestInitErrors(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	assert.Error(t, New().Init(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "serde.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mapper:\n  default-content-type: xml\n"), 0o600))
	assert.ErrorIs(t, New().Init(path), merr.ErrUnsupportedFormat)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o600))
	assert.Error(t, New().Init(path))
}
