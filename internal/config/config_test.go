package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communerag/internal/ai"
)

func TestValidate_Defaults(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_ChunkWindow(t *testing.T) {
	cfg := defaultConfig()
	cfg.Retrieval.ChunkSize = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = defaultConfig()
	cfg.Retrieval.ChunkOverlap = cfg.Retrieval.ChunkSize
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = defaultConfig()
	cfg.Retrieval.ChunkOverlap = cfg.Retrieval.ChunkSize - 1
	assert.NoError(t, cfg.Validate())
}

func TestValidate_TopKBounds(t *testing.T) {
	for _, bad := range []int{0, -1, 21} {
		cfg := defaultConfig()
		cfg.Retrieval.TopK = bad
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "top_k=%d", bad)
	}
	for _, ok := range []int{1, 20} {
		cfg := defaultConfig()
		cfg.Retrieval.TopK = ok
		assert.NoError(t, cfg.Validate(), "top_k=%d", ok)
	}
}

func TestValidate_MinScoreBounds(t *testing.T) {
	for _, bad := range []float64{-0.01, 1.01} {
		cfg := defaultConfig()
		cfg.Retrieval.MinScore = bad
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "min_score=%g", bad)
	}
	for _, ok := range []float64{0, 1, 0.35} {
		cfg := defaultConfig()
		cfg.Retrieval.MinScore = ok
		assert.NoError(t, cfg.Validate(), "min_score=%g", ok)
	}
}

func TestValidate_ModelVariant(t *testing.T) {
	cfg := defaultConfig()
	cfg.LLM.DefaultVariant = "medium"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestModelForVariant(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, cfg.LLM.SmallModel, cfg.ModelForVariant(ai.ModelSmall))
	assert.Equal(t, cfg.LLM.LargeModel, cfg.ModelForVariant(ai.ModelLarge))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "7")
	t.Setenv("RETRIEVAL_MIN_SCORE", "0.4")
	t.Setenv("LLM_DEFAULT_VARIANT", "large")
	t.Setenv("RETRIEVAL_TRIGGER_KEYWORDS", "mairie,état civil")

	cfg := defaultConfig()
	overrideByEnv(cfg)

	assert.Equal(t, 7, cfg.Retrieval.TopK)
	assert.Equal(t, 0.4, cfg.Retrieval.MinScore)
	assert.Equal(t, "large", cfg.LLM.DefaultVariant)
	assert.Equal(t, []string{"mairie", "état civil"}, cfg.Retrieval.TriggerKeywords)
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.User = "app"
	cfg.MySQL.Password = "secret"
	cfg.MySQL.Host = "db"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "kb"
	cfg.MySQL.Params = "parseTime=true"
	assert.Equal(t, "app:secret@tcp(db:3307)/kb?parseTime=true", cfg.MySQLDSN())
}
