package clgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "GPU", cfg.GetString("driver.device_type"))
	assert.Equal(t, 0, cfg.GetInt("driver.size"))
	assert.False(t, cfg.GetBool("driver.must_validate"))
	assert.False(t, cfg.GetBool("driver.fatal_errors"))
}

func TestConfig_SetOverridesDefault(t *testing.T) {
	cfg := NewConfig()
	cfg.SetBool("driver.must_validate", true)
	assert.True(t, cfg.GetBool("driver.must_validate"))
}

func TestConfig_GetWrongTypePanics(t *testing.T) {
	cfg := NewConfig()
	assert.Panics(t, func() { cfg.GetInt("driver.device_type") })
}

func TestConfig_GetMissingKeyPanics(t *testing.T) {
	cfg := NewConfig()
	assert.Panics(t, func() { cfg.GetBool("driver.does_not_exist") })
}
