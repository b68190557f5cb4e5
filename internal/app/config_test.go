package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "0.13", cfg.Tax().String())
	require.EqualValues(t, 5, cfg.DefaultStoreThreshold)
	require.Equal(t, 100, cfg.TokenPoolSize)
	require.True(t, cfg.RaiseThresholdOnReceive)
	require.Equal(t, "UTC", cfg.Location().String())
	require.Empty(t, cfg.Keywords())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"driver":   {"STORE_DRIVER", "sqlite"},
		"tax":      {"TAX_RATE", "1.5"},
		"tax text": {"TAX_RATE", "thirteen"},
		"pool":     {"TOKEN_POOL_SIZE", "101"},
		"timezone": {"STORE_TIMEZONE", "Mars/Olympus"},
		"negative": {"DEFAULT_STORE_THRESHOLD", "-1"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("STORE_DRIVER", "memory")
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestKeywordsSplitsList(t *testing.T) {
	cfg := &Config{CatalogKeywords: " Kurti, ,Saree ,"}
	require.Equal(t, []string{"Kurti", "Saree"}, cfg.Keywords())
}

func TestLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, &Config{AppEnv: "production", LogFormat: "JSON"}).Info("till open", "till", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "till open", line["msg"])
	require.Equal(t, "laxmi-pos", line["app"])
	require.Equal(t, "production", line["env"])

	buf.Reset()
	newLogger(&buf, nil).Warn("low stock")
	require.Contains(t, buf.String(), "env=development")
}
