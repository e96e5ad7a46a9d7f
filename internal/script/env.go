package script

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Shopify/go-lua"
)

// Env is the Lua state that holds story variables and evaluates
// conditions, code steps and text interpolations.
type Env struct {
	l *lua.State
}

// sandboxLibs are the only standard libraries story scripts can reach.
var sandboxLibs = []lua.RegistryFunction{
	{Name: "_G", Function: lua.BaseOpen},
	{Name: "table", Function: lua.TableOpen},
	{Name: "string", Function: lua.StringOpen},
	{Name: "math", Function: lua.MathOpen},
}

// blockedGlobals are base library functions that reach the file system or
// compile arbitrary chunks.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require"}

// NewEnv creates a sandboxed Lua environment.
func NewEnv() *Env {
	l := lua.NewState()
	for _, lib := range sandboxLibs {
		lua.Require(l, lib.Name, lib.Function, true)
		l.Pop(1)
	}
	for _, name := range blockedGlobals {
		l.PushNil()
		l.SetGlobal(name)
	}
	return &Env{l: l}
}

// Exec runs a Lua chunk for its side effects.
func (e *Env) Exec(code string) error {
	if err := lua.LoadString(e.l, code); err != nil {
		return fmt.Errorf("script: compile %q: %w", code, err)
	}
	if err := e.l.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("script: run %q: %w", code, err)
	}
	return nil
}

// eval leaves the value of expr on top of the stack.
func (e *Env) eval(expr string) error {
	if err := lua.LoadString(e.l, "return "+expr); err != nil {
		return fmt.Errorf("script: compile %q: %w", expr, err)
	}
	if err := e.l.ProtectedCall(0, 1, 0); err != nil {
		return fmt.Errorf("script: eval %q: %w", expr, err)
	}
	return nil
}

// Truthy evaluates expr with Lua truthiness (only nil and false are false).
func (e *Env) Truthy(expr string) (bool, error) {
	if err := e.eval(expr); err != nil {
		return false, err
	}
	v := e.l.ToBoolean(-1)
	e.l.Pop(1)
	return v, nil
}

// String evaluates expr and formats the result for display.
func (e *Env) String(expr string) (string, error) {
	if err := e.eval(expr); err != nil {
		return "", err
	}
	s := e.format(-1)
	e.l.Pop(1)
	return s, nil
}

func (e *Env) format(index int) string {
	switch e.l.TypeOf(index) {
	case lua.TypeNil:
		return ""
	case lua.TypeBoolean:
		return strconv.FormatBool(e.l.ToBoolean(index))
	case lua.TypeNumber:
		n, _ := e.l.ToNumber(index)
		return formatNumber(n)
	case lua.TypeString:
		s, _ := e.l.ToString(index)
		return s
	default:
		return lua.TypeNameOf(e.l, index)
	}
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Get returns a global variable as a Go value (nil, bool, float64 or string).
func (e *Env) Get(name string) any {
	e.l.Global(name)
	defer e.l.Pop(1)

	switch e.l.TypeOf(-1) {
	case lua.TypeBoolean:
		return e.l.ToBoolean(-1)
	case lua.TypeNumber:
		n, _ := e.l.ToNumber(-1)
		return n
	case lua.TypeString:
		s, _ := e.l.ToString(-1)
		return s
	default:
		return nil
	}
}

// SetFunc exposes a Go function to scripts under the given global name.
func (e *Env) SetFunc(name string, f lua.Function) {
	e.l.PushGoFunction(f)
	e.l.SetGlobal(name)
}

// Interpolate replaces every {expr} in text with its evaluated value.
// An unmatched '{' is kept verbatim.
func (e *Env) Interpolate(text string) (string, error) {
	if !strings.Contains(text, "{") {
		return text, nil
	}

	var b strings.Builder
	rest := text
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])

		expr := strings.TrimSpace(rest[open+1 : open+end])
		if expr != "" {
			v, err := e.String(expr)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		}
		rest = rest[open+end+1:]
	}
	return b.String(), nil
}

// LuaLiteral renders a Go value as a Lua literal for variable declarations.
func LuaLiteral(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "nil", nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return formatNumber(x), nil
	case string:
		return strconv.Quote(x), nil
	default:
		return "", fmt.Errorf("script: unsupported variable value %v (%T)", v, v)
	}
}
