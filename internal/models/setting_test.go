package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemSettingsGetInt(t *testing.T) {
	settings := SystemSettings{
		"good":     "15",
		"garbage":  "fifteen",
		"zero":     "0",
		"negative": "-3",
	}

	assert.Equal(t, 15, settings.GetInt("good", 5))
	assert.Equal(t, 5, settings.GetInt("garbage", 5))
	assert.Equal(t, 5, settings.GetInt("zero", 5))
	assert.Equal(t, 5, settings.GetInt("negative", 5))
	assert.Equal(t, 5, settings.GetInt("missing", 5))
}

func TestSystemSettingsGetBool(t *testing.T) {
	settings := SystemSettings{
		"json_true":  "true",
		"json_false": "false",
		"garbage":    "yes",
		"empty":      "",
	}

	assert.True(t, settings.GetBool("json_true", false))
	assert.False(t, settings.GetBool("json_false", true))
	assert.True(t, settings.GetBool("garbage", true))
	assert.True(t, settings.GetBool("empty", true))
	assert.False(t, settings.GetBool("missing", false))
}

func TestSystemSettingsGet(t *testing.T) {
	settings := SystemSettings{"set": "value", "empty": ""}

	assert.Equal(t, "value", settings.Get("set", "fallback"))
	assert.Equal(t, "fallback", settings.Get("empty", "fallback"))
	assert.Equal(t, "fallback", settings.Get("missing", "fallback"))
}
