// internal/models/request.go
package models

import (
	"encoding/json"
	"strconv"
)

// ParseRequest is the payload accepted by the parse worker and the HTTP API.
// Products may be omitted when UserID is set; the catalog is then read fresh.
type ParseRequest struct {
	Text      string    `json:"text"`
	Products  []Product `json:"products,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Sequence  uint64    `json:"sequence,omitempty"`
}

// HasCatalog reports whether the caller supplied the catalog inline.
func (r ParseRequest) HasCatalog() bool {
	return r.Products != nil
}

// ParseResponse wraps the command; Stale is set when a newer utterance of
// the same session was observed before or during the parse.
type ParseResponse struct {
	Command Command `json:"command"`
	Stale   bool    `json:"stale"`
}

// UnmarshalJSON accepts userId as either a JSON string or a number.
func (r *ParseRequest) UnmarshalJSON(data []byte) error {
	type alias ParseRequest
	var raw struct {
		alias
		UserID json.RawMessage `json:"userId,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ParseRequest(raw.alias)
	r.UserID = ""
	if len(raw.UserID) == 0 || string(raw.UserID) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.UserID, &s); err == nil {
		r.UserID = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.UserID, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return err
	}
	r.UserID = n.String()
	return nil
}
