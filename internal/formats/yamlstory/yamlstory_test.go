package yamlstory

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-novel/internal/registry"
	"github.com/vovakirdan/tui-novel/internal/schema"
	"github.com/vovakirdan/tui-novel/internal/script"
)

const cafe = `
title: Night Cafe
vars:
  coins: 2
  guest: Mika
knots:
  start:
    - line: "Aru: Welcome, {guest}!"
      tags: [wave]
    - choices:
        - text: Order tea
          echo: "Tea, please."
          when: coins > 0
          then:
            - do: coins = coins - 1
          goto: counter
        - text: Look around
          echo: ""
          sticky: true
          then:
            - line: Lanterns sway.
    - goto: counter
  counter:
    - line: "Aru: {coins} coins left."
    - end: true
`

func TestParse(t *testing.T) {
	s, err := Parse("cafe", []byte(cafe))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Title != "Night Cafe" || s.Start != DefaultStart {
		t.Errorf("Title=%q Start=%q", s.Title, s.Start)
	}
	if len(s.Vars) != 2 || s.Vars[0].Name != "coins" || s.Vars[1].Expr != `"Mika"` {
		t.Errorf("Vars = %+v", s.Vars)
	}

	choices := s.Knots["start"].Steps[1].Choices
	if choices[0].Echo != "Tea, please." || choices[0].Cond != "coins > 0" || choices[0].Target != "counter" {
		t.Errorf("tea = %+v", choices[0])
	}
	if choices[1].Echo != "" || !choices[1].Sticky || len(choices[1].Body) != 1 {
		t.Errorf("look = %+v", choices[1])
	}
}

func TestParseRuns(t *testing.T) {
	s, err := Parse("cafe", []byte(cafe))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := script.NewRunner(s)
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}

	var buf []script.Line
	if _, err := r.Resume(&buf); err != nil {
		t.Fatal(err)
	}
	if buf[0].Text != "Aru: Welcome, Mika!\n" {
		t.Errorf("first line = %q", buf[0].Text)
	}

	_ = r.MakeChoice(0)
	buf = nil
	p, err := r.Resume(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != 2 || buf[1].Text != "Aru: 1 coins left.\n" || !p.Done {
		t.Errorf("after tea: %+v done=%v", buf, p.Done)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		schema bool
	}{
		{"no knots", "title: x\n", true},
		{"unknown step key", "knots:\n  start:\n    - say: hi\n", true},
		{"two actions in one step", "knots:\n  start:\n    - line: hi\n      goto: start\n", true},
		{"empty choices", "knots:\n  start:\n    - choices: []\n", true},
		{"unknown target", "knots:\n  start:\n    - goto: nowhere\n", false},
		{"missing start", "start: intro\nknots:\n  other:\n    - end: true\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x", []byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, schema.ErrInvalid); got != tt.schema {
				t.Errorf("schema error = %v, expected %v (%v)", got, tt.schema, err)
			}
		})
	}
}

func TestRegistered(t *testing.T) {
	for _, ext := range []string{".yaml", ".yml"} {
		if f, ok := registry.ForExtension(ext); !ok || f.Name != "yaml" {
			t.Errorf("yaml format should handle %s", ext)
		}
	}
}
