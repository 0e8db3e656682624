package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/aqua-events/internal/dedup"
	"github.com/pfrederiksen/aqua-events/internal/event"
	"github.com/pfrederiksen/aqua-events/internal/rules"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{configPathEnv, mongoURIEnv, mongoURILegacy, mongoDatabaseEnv} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aqua-events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultProfile, cfg.Run.Profile)
	assert.Equal(t, DefaultGrace, cfg.Run.Grace)
	assert.Equal(t, "events", cfg.Mongo.Collection)
	assert.ErrorIs(t, cfg.RequireMongo(), ErrMissingURI)
	assert.Equal(t, []string{
		"aggressive", "disciplines", "duplicates", "federations", "final", "full", "smart", "standard", "ultra",
	}, cfg.ProfileNames())
}

func TestLoad_FileMergesOverDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
mongo:
  uri: mongodb://db.internal:27017/aqua
run:
  profile: contact-only
  grace: 10s
  archive: /var/lib/aqua-events/archive.db
profiles:
  contact-only:
    description: contact checks
    rules: [no_contact_info, generic_calendar_contact_only]
  smart:
    rules: [no_contact_info]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "mongodb://db.internal:27017/aqua", cfg.Mongo.URI)
	assert.Equal(t, 10*time.Second, cfg.Run.Grace)
	assert.Equal(t, DefaultSamples, cfg.Run.Samples)
	assert.Equal(t, "/var/lib/aqua-events/archive.db", cfg.Run.Archive)

	p, err := cfg.Profile("")
	require.NoError(t, err)
	assert.Equal(t, "contact-only", p.Name)

	smart, err := cfg.Profile("smart")
	require.NoError(t, err)
	assert.Equal(t, []string{"no_contact_info"}, smart.Rules)

	_, err = cfg.Profile("full")
	assert.NoError(t, err, "built-in profiles survive a file that defines others")
}

func TestLoad_ZeroGraceFromFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, "run:\n  grace: 0s\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Run.Grace)

	cfg, err = Load(writeConfig(t, "run:\n  samples: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultGrace, cfg.Run.Grace, "absent key keeps the default")
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, writeConfig(t, "run:\n  samples: 12\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Run.Samples)
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantURI string
		wantDB  string
	}{
		{
			name:    "MONGODB_URI wins over file",
			env:     map[string]string{mongoURIEnv: "mongodb://env/a"},
			file:    "mongo:\n  uri: mongodb://file/b\n",
			wantURI: "mongodb://env/a",
		},
		{
			name:    "legacy variable as fallback",
			env:     map[string]string{mongoURILegacy: "mongodb://legacy/c"},
			wantURI: "mongodb://legacy/c",
		},
		{
			name:    "legacy variable does not override file",
			env:     map[string]string{mongoURILegacy: "mongodb://legacy/c"},
			file:    "mongo:\n  uri: mongodb://file/b\n",
			wantURI: "mongodb://file/b",
		},
		{
			name:   "database override",
			env:    map[string]string{mongoDatabaseEnv: "staging"},
			wantDB: "staging",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURI, cfg.Mongo.URI)
			assert.Equal(t, tt.wantDB, cfg.Mongo.Database)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantMsg string
	}{
		{"bad yaml", "run: [unclosed", nil, "parsing config"},
		{"unknown key", "runn:\n  profile: full\n", nil, "field runn not found"},
		{"unknown profile selected", "run:\n  profile: nope\n", ErrUnknownProfile, ""},
		{"unknown rule", "profiles:\n  x:\n    rules: [no_such_rule]\n", nil, "unknown reason code"},
		{"unknown corrector", "profiles:\n  x:\n    correctors: [weather]\n", nil, "unknown corrector"},
		{"unknown dedup", "profiles:\n  x:\n    dedup: [fuzzy]\n", nil, "unknown dedup strategy"},
		{"empty profile", "profiles:\n  x:\n    description: nothing\n", nil, "selects no rules"},
		{"negative grace", "run:\n  grace: -1s\n", nil, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "error %v is not %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "reading config")
}

func TestBuiltinProfiles(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	full, err := cfg.Profile("full")
	require.NoError(t, err)
	codes, err := full.Codes()
	require.NoError(t, err)
	assert.Equal(t, rules.Canonical(), codes)
	strategies, err := full.Strategies()
	require.NoError(t, err)
	assert.Equal(t, []dedup.Strategy{dedup.Submission, dedup.Content}, strategies)
	assert.Equal(t, []string{"city"}, full.Correctors)

	standard, err := cfg.Profile("standard")
	require.NoError(t, err)
	assert.Equal(t, 6, standard.Params().MinTitleLength)
	assert.Contains(t, standard.Rules, string(rules.MissingDiscipline))

	disciplines, err := cfg.Profile("disciplines")
	require.NoError(t, err)
	assert.Empty(t, disciplines.Rules)
	assert.Equal(t, []string{"discipline"}, disciplines.Correctors)
}

func TestStandardProfile_DeletesGenericTitles(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	standard, err := cfg.Profile("standard")
	require.NoError(t, err)
	codes, err := standard.Codes()
	require.NoError(t, err)
	params := standard.Params()
	params.Now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	c := rules.NewClassifier(rules.DefaultTable(), codes, params)

	view := func(title string) event.View {
		return event.Normalize(event.FromDocument(map[string]interface{}{
			"_id":        "e1",
			"name":       map[string]interface{}{"es": title},
			"date":       "2026-09-12",
			"location":   map[string]interface{}{"city": "Vigo", "region": "Galicia"},
			"discipline": "natacion",
		}))
	}

	tests := []struct {
		title string
		want  rules.Verdict
	}{
		{"Competiciones", rules.Delete},
		{"Campeonato", rules.Delete},
		{"Temporada", rules.Delete},
		{"Masculino", rules.Delete},
		{"Infantil", rules.Delete},
		{"Travesía Ría de Vigo", rules.Keep},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := c.Classify(view(tt.title))
			assert.Equal(t, tt.want, got.Verdict, "reasons: %v", got.Reasons)
			if tt.want == rules.Delete {
				assert.True(t, got.Has(rules.CalendarUIElement))
			}
		})
	}
}
