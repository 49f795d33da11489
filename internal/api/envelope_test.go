package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeTransformer_Success(t *testing.T) {
	payload := map[string]any{"message": "hello"}

	result, err := EnvelopeTransformer(nil, "200", payload)
	require.NoError(t, err)

	envelope, ok := result.(*Envelope)
	require.True(t, ok)

	assert.Equal(t, 1, envelope.V)
	assert.True(t, envelope.Success)
	assert.Equal(t, payload, envelope.Data)
	assert.Empty(t, envelope.Error)
	assert.Empty(t, envelope.Code)
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	envelope := result.(*Envelope)
	assert.Equal(t, 1, envelope.V)
	assert.True(t, envelope.Success)
	assert.Nil(t, envelope.Data)
}

func TestEnvelopeTransformer_APIError(t *testing.T) {
	apiErr := &APIError{
		status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "book not found",
	}

	result, err := EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)

	envelope := result.(*Envelope)
	assert.Equal(t, 1, envelope.V)
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.Equal(t, "book not found", envelope.Message)
	assert.Equal(t, "book not found", envelope.Error)
	assert.Nil(t, envelope.Data)
}

func TestEnvelopeTransformer_ErrorDetails(t *testing.T) {
	details := []map[string]any{{"field": "title", "rule": "required"}}
	apiErr := &APIError{
		status:  http.StatusBadRequest,
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: details,
	}

	result, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	envelope := result.(*Envelope)
	assert.False(t, envelope.Success)
	assert.Equal(t, details, envelope.Details)
}

func TestAPIError_StatusAndContentType(t *testing.T) {
	apiErr := &APIError{status: http.StatusConflict, Code: "CONFLICT", Message: "duplicate"}

	assert.Equal(t, http.StatusConflict, apiErr.GetStatus())
	assert.Equal(t, "application/json", apiErr.ContentType(""))
	assert.Equal(t, "duplicate", apiErr.Error())
}
