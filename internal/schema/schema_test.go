package schema

import (
	"errors"
	"testing"
)

const personSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer", "minimum": 0}
  },
  "additionalProperties": false
}`

func TestValidateYAML(t *testing.T) {
	s := MustCompile("person", []byte(personSchema))

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", "name: Aru\nage: 20\n", false},
		{"missing name", "age: 20\n", true},
		{"negative age", "name: Aru\nage: -1\n", true},
		{"extra field", "name: Aru\nmood: happy\n", true},
		{"not yaml", "name: [unclosed\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateYAML([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateYAML() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWrapsErrInvalid(t *testing.T) {
	s := MustCompile("person", []byte(personSchema))
	err := s.Validate(map[any]any{"age": 3})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestCompileBadSchema(t *testing.T) {
	if _, err := Compile("bad", []byte("{not json")); err == nil {
		t.Error("expected compile error")
	}
}
