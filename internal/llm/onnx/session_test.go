package onnx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	app_errors "neptune-ai/backend/internal/errors"
)

func TestOpen_MissingGraph(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "gpt2.onnx"), Options{})
	assert.ErrorIs(t, err, app_errors.ErrEngineUnavailable)
	assert.ErrorContains(t, err, "export the model before use")
}
