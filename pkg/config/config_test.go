package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092 , ,b:9092"))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("FD_TEST_INT", "12")
	t.Setenv("FD_TEST_BAD_INT", "x")
	t.Setenv("FD_TEST_FLOAT", "12.5")
	t.Setenv("FD_TEST_NEG_FLOAT", "-1")

	assert.Equal(t, 12, EnvIntDefault("FD_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("FD_TEST_BAD_INT", 1))
	assert.Equal(t, 7, EnvIntDefault("FD_TEST_MISSING", 7))
	assert.Equal(t, 12.5, EnvFloatDefault("FD_TEST_FLOAT", 40))
	assert.Equal(t, 40.0, EnvFloatDefault("FD_TEST_NEG_FLOAT", 40))
	assert.Equal(t, "dflt", EnvDefault("FD_TEST_MISSING", "dflt"))

	t.Setenv("FD_TEST_BOOL", "true")
	assert.True(t, EnvBoolDefault("FD_TEST_BOOL", false))
	assert.True(t, EnvBoolDefault("FD_TEST_MISSING", true))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DELIVERY_FEE", "")
	t.Setenv("CATALOG_STORE", "")
	cfg := Load()
	assert.Equal(t, 40.0, cfg.DeliveryFee)
	assert.Equal(t, "sql", cfg.CatalogStore)
	assert.Equal(t, "foods", cfg.ESIndex)
}
