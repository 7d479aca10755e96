package config

import (
	"Unbewohnte/YTCS/internal/comment"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	conf := DefaultConfig()
	require.NoError(t, conf.Validate())

	assert.Equal(t, "novo", conf.Export.Dir)
	assert.Equal(t, "comentarios.csv", conf.Export.CSVFile)
	assert.Equal(t, "comentarios.json", conf.Export.JSONFile)
	assert.Equal(t, "comentarios.db", conf.Export.SQLiteFile)
	assert.Equal(t, comment.DefaultFilter(), conf.Defaults.Filter)
	assert.Equal(t, 100, conf.YouTube.PageSize)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	conf := DefaultConfig()
	conf.Defaults.MaxResults = 250
	conf.Defaults.Sort = "likes"
	conf.Telegram.AllowedUserIDs = []int64{42}
	require.NoError(t, conf.Save(path))
	assert.Equal(t, path, conf.Path())

	loaded, err := ConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.Path())
	assert.Equal(t, 250, loaded.Defaults.MaxResults)
	assert.Equal(t, "likes", loaded.Defaults.Sort)
	assert.Equal(t, []int64{42}, loaded.Telegram.AllowedUserIDs)
	assert.Equal(t, conf.Classifier, loaded.Classifier)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"defaults": {"max_results": 5}}`), 0600))

	conf, err := ConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 5, conf.Defaults.MaxResults)
	assert.Equal(t, BackendHugot, conf.Classifier.Backend)
	assert.Equal(t, "novo", conf.Export.Dir)
}

func TestUpdateNeedsPath(t *testing.T) {
	assert.ErrorIs(t, DefaultConfig().Update(), ErrUnknownConfigPath)
}

func TestEnvOverridesAreNotSaved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, DefaultConfig().Save(path))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("YTCS_TELEGRAM_TOKEN=from-dotenv\n"), 0600))
	t.Cleanup(func() { os.Unsetenv(EnvTelegramToken) })
	t.Setenv(EnvYouTubeAPIKey, "from-env")

	conf, err := ConfigFrom(path)
	require.NoError(t, err)
	require.NoError(t, conf.ApplyEnv(envFile, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "from-env", conf.YouTube.APIKey)
	assert.Equal(t, "from-dotenv", conf.Telegram.ApiToken)

	conf.Defaults.MaxResults = 7
	require.NoError(t, conf.Update())

	reloaded, err := ConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.Defaults.MaxResults)
	assert.Equal(t, "youtube_api_key", reloaded.YouTube.APIKey)
	assert.Equal(t, "tg_api_token", reloaded.Telegram.ApiToken)
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	credentials := filepath.Join(dir, "secret.json")
	require.NoError(t, os.WriteFile(credentials, []byte(`{"type": "service_account"}`), 0600))

	conf := DefaultConfig()
	conf.YouTube.CredentialsFile = credentials
	conf.Sheets.Enabled = true
	conf.Sheets.CredentialsFile = credentials
	require.NoError(t, conf.LoadCredentials())
	assert.NotEmpty(t, conf.YouTube.CredentialsJSON)
	assert.NotEmpty(t, conf.Sheets.CredentialsJSON)

	conf.Sheets.CredentialsFile = filepath.Join(dir, "missing.json")
	assert.Error(t, conf.LoadCredentials())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max results", func(c *Config) { c.Defaults.MaxResults = 0 }},
		{"page size over cap", func(c *Config) { c.YouTube.PageSize = 101 }},
		{"page size zero", func(c *Config) { c.YouTube.PageSize = 0 }},
		{"negative likes", func(c *Config) { c.Defaults.Filter.MinLikes = -1 }},
		{"polarity below range", func(c *Config) { c.Defaults.Filter.MinPolarity = -1.5 }},
		{"inverted polarity bounds", func(c *Config) {
			c.Defaults.Filter.MinPolarity = 0.5
			c.Defaults.Filter.MaxPolarity = 0
		}},
		{"unknown backend", func(c *Config) { c.Classifier.Backend = "vader" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := DefaultConfig()
			tt.mutate(conf)
			assert.Error(t, conf.Validate())
		})
	}

	conf := DefaultConfig()
	conf.Defaults.Sort = "views"
	assert.ErrorIs(t, conf.Validate(), comment.ErrUnknownSortKey)
}
