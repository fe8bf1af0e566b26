package validation

import (
	"encoding/json"
	"fmt"

	apperrors "shopsense-voice/internal/common/errors"
	"shopsense-voice/internal/models"
)

// MaxTextLength bounds transcripts accepted by the worker and the API.
const MaxTextLength = 1000

// ParseRequestSchema describes a voice command parse payload.
const ParseRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["text"],
  "properties": {
    "text": {"type": "string", "maxLength": 1000},
    "userId": {"type": ["string", "integer"]},
    "sessionId": {"type": "string", "minLength": 1, "maxLength": 128},
    "sequence": {"type": "integer", "minimum": 0},
    "products": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "id": {"type": "integer"},
          "name": {"type": "string"},
          "price": {"type": "number", "minimum": 0},
          "stock": {"type": "integer"},
          "unit": {"type": "string"}
        }
      }
    }
  }
}`

// ParseRequest is the compiled ParseRequestSchema.
var ParseRequest = MustCompile(ParseRequestSchema)

// DecodeParseRequest validates raw against ParseRequestSchema and decodes it.
// Failures are INVALID_INPUT errors listing every offending field.
func DecodeParseRequest(raw []byte) (*models.ParseRequest, error) {
	result, err := ParseRequest.ValidateJSON(raw)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Error()).
			WithMetadata("fields", result.GetErrorMessages())
	}

	var req models.ParseRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("decode input: %v", err))
	}
	return &req, nil
}
