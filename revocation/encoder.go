package revocation

import (
	"encoding/json"
	"errors"
)

// Encode serializes a [Record] to its stored JSON form.
func Encode(r *Record) ([]byte, error) {
	if r == nil || r.SubjectID == "" {
		return nil, errors.New("record requires a subject id")
	}
	return json.Marshal(r)
}

// Decode parses a stored JSON blob back into a [Record].
func Decode(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.SubjectID == "" {
		return nil, errors.New("record missing subject id")
	}
	return &r, nil
}
