package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationType_IsValid(t *testing.T) {
	assert.True(t, LocationLocal.IsValid())
	assert.True(t, LocationExternal.IsValid())
	assert.True(t, LocationCloud.IsValid())
	assert.False(t, LocationType("network").IsValid())
	assert.Equal(t, "cloud", LocationCloud.String())
}

func TestStorageLocation_JSON(t *testing.T) {
	loc := StorageLocation{
		Path:        "/home/u/Dropbox",
		Name:        "Dropbox",
		Type:        LocationCloud,
		Accessible:  true,
		Description: "Dropbox sync folder",
	}

	data, err := json.Marshal(loc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"path": "/home/u/Dropbox",
		"name": "Dropbox",
		"type": "cloud",
		"accessible": true,
		"description": "Dropbox sync folder"
	}`, string(data))
}
