package validation

import (
	"testing"

	apperrors "shopsense-voice/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Schema compilation
// ==========================

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompile(`not json`) })
}

// ==========================
// Parse request schema
// ==========================

func TestParseRequest_Valid(t *testing.T) {
	docs := []string{
		`{"text": "add 2 kg rice"}`,
		`{"text": ""}`,
		`{"text": "chawal", "userId": 12, "sessionId": "s-1", "sequence": 3}`,
		`{"text": "chawal", "userId": "u-12"}`,
		`{"text": "chawal", "products": [{"id": 1, "name": "Basmati Rice", "price": 90.5, "stock": 4}]}`,
		`{"text": "x", "extra": true}`,
	}

	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			result, err := ParseRequest.ValidateJSON([]byte(doc))
			require.NoError(t, err)
			assert.True(t, result.Valid, result.Error())
			assert.Empty(t, result.Error())
		})
	}
}

func TestParseRequest_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"missing text", `{"userId": 1}`, "text"},
		{"text not a string", `{"text": 5}`, "text"},
		{"negative sequence", `{"text": "x", "sequence": -1}`, "sequence"},
		{"fractional sequence", `{"text": "x", "sequence": 1.5}`, "sequence"},
		{"empty session", `{"text": "x", "sessionId": ""}`, "sessionId"},
		{"userId bool", `{"text": "x", "userId": true}`, "userId"},
		{"product without name", `{"text": "x", "products": [{"id": 1}]}`, "products.0.name"},
		{"products not array", `{"text": "x", "products": {}}`, "products"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseRequest.ValidateJSON([]byte(tt.doc))
			require.NoError(t, err)
			assert.False(t, result.Valid)
			assert.True(t, result.HasErrors(tt.field), "errors: %v", result.GetErrorMessages())
			assert.NotEmpty(t, result.Error())
		})
	}
}

func TestParseRequest_TextTooLong(t *testing.T) {
	long := make([]byte, MaxTextLength+1)
	for i := range long {
		long[i] = 'a'
	}

	result, err := ParseRequest.Validate(map[string]interface{}{"text": string(long)})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("text"))
}

func TestValidateJSON_MalformedDocument(t *testing.T) {
	_, err := ParseRequest.ValidateJSON([]byte(`{"text":`))
	assert.Error(t, err)
}

func TestGetErrorsForField(t *testing.T) {
	result, err := ParseRequest.ValidateJSON([]byte(`{"text": "x", "products": [{"id": "a"}]}`))
	require.NoError(t, err)

	errs := result.GetErrorsForField("products")
	assert.Len(t, errs, 2)
	for _, e := range errs {
		assert.NotEmpty(t, e.Code)
		assert.NotEmpty(t, e.Message)
	}
}

// ==========================
// DecodeParseRequest
// ==========================

func TestDecodeParseRequest(t *testing.T) {
	req, err := DecodeParseRequest([]byte(`{"text":"do kilo cheeni","userId":5,"sequence":2}`))
	require.NoError(t, err)

	assert.Equal(t, "do kilo cheeni", req.Text)
	assert.Equal(t, "5", req.UserID)
	assert.Equal(t, uint64(2), req.Sequence)
}

func TestDecodeParseRequest_Invalid(t *testing.T) {
	_, err := DecodeParseRequest([]byte(`{"sequence":-2}`))

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
	assert.Contains(t, stdErr.Details, "text")
	assert.Contains(t, stdErr.Details, "sequence")
	assert.Len(t, stdErr.Metadata["fields"], 2)
}
