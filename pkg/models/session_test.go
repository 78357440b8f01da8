package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSnapshot_WithoutImageData(t *testing.T) {
	img := &Image{ID: "a", Filename: "cat.png", MIMEType: "image/png", Size: 3, DataURI: "data:image/png;base64,AAAA"}
	snap := SessionSnapshot{SessionID: "s", Phase: PhaseIdle, Image: img, Revision: 4}

	light := snap.WithoutImageData()
	require.NotNil(t, light.Image)
	assert.Equal(t, "a", light.Image.ID)
	assert.Equal(t, "cat.png", light.Image.Filename)
	assert.Empty(t, light.Image.DataURI)
	assert.Equal(t, "data:image/png;base64,AAAA", img.DataURI, "the original image is untouched")

	data, err := json.Marshal(light)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "data_uri")

	empty := SessionSnapshot{SessionID: "s"}.WithoutImageData()
	assert.Nil(t, empty.Image)
}
