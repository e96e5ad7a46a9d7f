// Package ink parses a subset of the ink narrative language into a
// script.Story.
//
// Supported: VAR declarations, header tags, === knots ===, text lines with
// # tags and trailing -> diverts, ~ Lua statements, once-only (*) and
// sticky (+) choices with {conditions} and [bracket] text, - gathers,
// -> END / -> DONE and // comments. Nested choices and stitches are not
// supported.
package ink

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-novel/internal/registry"
	"github.com/vovakirdan/tui-novel/internal/script"
)

func init() {
	registry.Register(registry.Format{
		Name:       "ink",
		Extensions: []string{".ink"},
		Parse:      Parse,
	})
}

// ParseError reports a syntax error at a source line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ink: line %d: %s", e.Line, e.Msg)
}

type parser struct {
	story *script.Story
	order []string // knot declaration order

	knot    *script.Knot
	choices []*script.ChoiceDef // open choice set, nil when closed
	tags    []string            // standalone tags waiting for the next line
	content bool                // any knot or step seen yet
	lineNo  int
}

// Parse compiles ink source into a story.
func Parse(id string, data []byte) (*script.Story, error) {
	p := &parser{story: script.NewStory(id)}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		p.lineNo++
		if err := p.line(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ink: %w", err)
	}
	p.closeChoices()

	if root, ok := p.story.Knots[script.RootKnot]; ok && len(root.Steps) > 0 {
		p.story.Start = script.RootKnot
	} else {
		delete(p.story.Knots, script.RootKnot)
		for _, name := range p.order {
			if name != script.RootKnot {
				p.story.Start = name
				break
			}
		}
	}
	if p.story.Start == "" {
		return nil, fmt.Errorf("ink: story %q has no content", id)
	}

	if err := p.story.Validate(); err != nil {
		return nil, fmt.Errorf("ink: %w", err)
	}
	return p.story, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.lineNo, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) line(raw string) error {
	s := strings.TrimSpace(raw)

	switch {
	case s == "" || strings.HasPrefix(s, "//"):
		return nil

	case strings.HasPrefix(s, "VAR "):
		return p.variable(strings.TrimSpace(s[len("VAR "):]))

	case strings.HasPrefix(s, "#"):
		tags := splitTags(s)
		if !p.content {
			p.header(tags)
			return nil
		}
		p.tags = append(p.tags, tags...)
		return nil

	case strings.HasPrefix(s, "=="):
		return p.knotHeader(s)

	case strings.HasPrefix(s, "="):
		return p.errorf("stitches are not supported")

	case strings.HasPrefix(s, "~"):
		p.emit(script.Step{Kind: script.StepCode, Code: strings.TrimSpace(s[1:])})
		return nil

	case strings.HasPrefix(s, "->"):
		target := strings.TrimSpace(s[2:])
		if target == "" {
			return p.errorf("divert without target")
		}
		p.emit(divertStep(target))
		return nil

	case s[0] == '*' || s[0] == '+':
		return p.choice(s)

	case s[0] == '-':
		p.closeChoices()
		rest := strings.TrimSpace(strings.TrimLeft(s, "- "))
		if rest == "" {
			return nil
		}
		return p.text(rest)

	default:
		return p.text(s)
	}
}

func (p *parser) variable(decl string) error {
	name, expr, ok := strings.Cut(decl, "=")
	name = strings.TrimSpace(name)
	expr = strings.TrimSpace(expr)
	if !ok || !isIdent(name) || expr == "" {
		return p.errorf("malformed VAR declaration %q", decl)
	}
	p.story.Vars = append(p.story.Vars, script.Var{Name: name, Expr: expr})
	return nil
}

func (p *parser) header(tags []string) {
	for _, tag := range tags {
		key, value, ok := strings.Cut(tag, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), "title") {
			p.story.Title = strings.TrimSpace(value)
		}
	}
	p.story.Tags = append(p.story.Tags, tags...)
}

func (p *parser) knotHeader(s string) error {
	p.closeChoices()
	if len(p.tags) > 0 {
		return p.errorf("tags %v are not followed by a line", p.tags)
	}

	name := strings.TrimSpace(strings.Trim(s, "="))
	if !isIdent(name) {
		return p.errorf("invalid knot name %q", name)
	}

	k := &script.Knot{Name: name}
	if err := p.story.AddKnot(k); err != nil {
		return p.errorf("%v", err)
	}
	p.order = append(p.order, name)
	p.knot = k
	p.content = true
	return nil
}

func (p *parser) choice(s string) error {
	sticky := s[0] == '+'
	if len(s) > 1 && (s[1] == '*' || s[1] == '+') {
		return p.errorf("nested choices are not supported")
	}
	body := strings.TrimSpace(s[1:])

	c := &script.ChoiceDef{Sticky: sticky}

	if strings.HasPrefix(body, "{") {
		end := strings.IndexByte(body, '}')
		if end < 0 {
			return p.errorf("unterminated choice condition")
		}
		c.Cond = strings.TrimSpace(body[1:end])
		body = strings.TrimSpace(body[end+1:])
	}

	body, c.Tags = cutTags(body)
	body, c.Target = cutDivert(body)

	before, inside, after, err := splitBrackets(body)
	if err != nil {
		return p.errorf("%v", err)
	}
	c.Text = strings.TrimSpace(before + inside)
	c.Echo = strings.TrimSpace(before + after)
	if c.Text == "" {
		return p.errorf("choice without text")
	}

	p.ensureKnot()
	p.choices = append(p.choices, c)
	p.content = true
	return nil
}

func (p *parser) text(s string) error {
	s, tags := cutTags(s)
	s, target := cutDivert(s)

	if s != "" {
		p.emit(script.Step{Kind: script.StepLine, Text: s, Tags: append(p.tags, tags...)})
		p.tags = nil
	}
	if target != "" {
		p.emit(divertStep(target))
	}
	return nil
}

// emit appends a step to the innermost open block.
func (p *parser) emit(step script.Step) {
	p.content = true
	if n := len(p.choices); n > 0 {
		c := p.choices[n-1]
		c.Body = append(c.Body, step)
		return
	}
	p.ensureKnot()
	p.knot.Steps = append(p.knot.Steps, step)
}

func (p *parser) ensureKnot() {
	if p.knot != nil {
		return
	}
	p.knot = &script.Knot{Name: script.RootKnot}
	p.story.Knots[script.RootKnot] = p.knot
	p.order = append(p.order, script.RootKnot)
}

func (p *parser) closeChoices() {
	if len(p.choices) == 0 {
		return
	}
	p.knot.Steps = append(p.knot.Steps, script.Step{Kind: script.StepChoices, Choices: p.choices})
	p.choices = nil
}

func divertStep(target string) script.Step {
	if target == script.TargetEnd || target == script.TargetDone {
		return script.Step{Kind: script.StepEnd}
	}
	return script.Step{Kind: script.StepDivert, Target: target}
}

// cutTags splits "text # a # b" into "text" and [a b].
func cutTags(s string) (string, []string) {
	i := strings.IndexByte(s, '#')
	if i < 0 {
		return strings.TrimSpace(s), nil
	}
	return strings.TrimSpace(s[:i]), splitTags(s[i:])
}

func splitTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, "#") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// cutDivert splits "text -> knot" into "text" and "knot".
func cutDivert(s string) (string, string) {
	i := strings.LastIndex(s, "->")
	if i < 0 {
		return s, ""
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+2:])
}

func splitBrackets(s string) (before, inside, after string, err error) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return s, "", "", nil
	}
	end := strings.IndexByte(s[open:], ']')
	if end < 0 {
		return "", "", "", fmt.Errorf("unterminated [ in choice")
	}
	end += open
	return s[:open], s[open+1 : end], s[end+1:], nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
