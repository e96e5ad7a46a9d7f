// Package yamlstory parses stories written as YAML documents.
//
//	title: Night Cafe
//	start: door
//	vars: {coins: 2}
//	knots:
//	  door:
//	    - line: "Aru: Welcome!"
//	      tags: [wave]
//	    - choices:
//	        - text: Order tea
//	          when: coins > 0
//	          then: [{do: coins = coins - 1}]
//	          goto: counter
//	    - end: true
package yamlstory

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-novel/internal/registry"
	"github.com/vovakirdan/tui-novel/internal/schema"
	"github.com/vovakirdan/tui-novel/internal/script"
)

//go:embed story.schema.json
var schemaJSON []byte

var storySchema = schema.MustCompile("yaml story", schemaJSON)

func init() {
	registry.Register(registry.Format{
		Name:       "yaml",
		Extensions: []string{".yaml", ".yml"},
		Parse:      Parse,
	})
}

// DefaultStart is the start knot when none is named.
const DefaultStart = "start"

type document struct {
	Title string               `yaml:"title"`
	Start string               `yaml:"start"`
	Tags  []string             `yaml:"tags"`
	Vars  map[string]any       `yaml:"vars"`
	Knots map[string][]stepDoc `yaml:"knots"`
}

type stepDoc struct {
	Line    *string     `yaml:"line"`
	Tags    []string    `yaml:"tags"`
	Do      string      `yaml:"do"`
	Goto    string      `yaml:"goto"`
	End     bool        `yaml:"end"`
	Choices []choiceDoc `yaml:"choices"`
}

type choiceDoc struct {
	Text   string    `yaml:"text"`
	Echo   *string   `yaml:"echo"` // nil echoes Text, "" echoes nothing
	Tags   []string  `yaml:"tags"`
	When   string    `yaml:"when"`
	Sticky bool      `yaml:"sticky"`
	Then   []stepDoc `yaml:"then"`
	Goto   string    `yaml:"goto"`
}

// Parse validates and compiles a YAML story.
func Parse(id string, data []byte) (*script.Story, error) {
	if err := storySchema.ValidateYAML(data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yamlstory: %w", err)
	}

	s := script.NewStory(id)
	s.Title = doc.Title
	s.Tags = doc.Tags
	s.Start = doc.Start
	if s.Start == "" {
		s.Start = DefaultStart
	}

	names := make([]string, 0, len(doc.Vars))
	for name := range doc.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		expr, err := script.LuaLiteral(doc.Vars[name])
		if err != nil {
			return nil, fmt.Errorf("yamlstory: var %s: %w", name, err)
		}
		s.Vars = append(s.Vars, script.Var{Name: name, Expr: expr})
	}

	for name, steps := range doc.Knots {
		if err := s.AddKnot(&script.Knot{Name: name, Steps: compileSteps(steps)}); err != nil {
			return nil, fmt.Errorf("yamlstory: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("yamlstory: %w", err)
	}
	return s, nil
}

func compileSteps(docs []stepDoc) []script.Step {
	steps := make([]script.Step, 0, len(docs))
	for _, d := range docs {
		switch {
		case d.Line != nil:
			steps = append(steps, script.Step{Kind: script.StepLine, Text: *d.Line, Tags: d.Tags})
		case d.Do != "":
			steps = append(steps, script.Step{Kind: script.StepCode, Code: d.Do})
		case d.Goto != "":
			steps = append(steps, script.Step{Kind: script.StepDivert, Target: d.Goto})
		case d.End:
			steps = append(steps, script.Step{Kind: script.StepEnd})
		case len(d.Choices) > 0:
			steps = append(steps, script.Step{Kind: script.StepChoices, Choices: compileChoices(d.Choices)})
		}
	}
	return steps
}

func compileChoices(docs []choiceDoc) []*script.ChoiceDef {
	out := make([]*script.ChoiceDef, len(docs))
	for i, d := range docs {
		echo := d.Text
		if d.Echo != nil {
			echo = *d.Echo
		}
		out[i] = &script.ChoiceDef{
			Text:   d.Text,
			Echo:   echo,
			Tags:   d.Tags,
			Cond:   d.When,
			Sticky: d.Sticky,
			Body:   compileSteps(d.Then),
			Target: d.Goto,
		}
	}
	return out
}
