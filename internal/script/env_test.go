package script

import "testing"

func TestEnvInterpolate(t *testing.T) {
	e := NewEnv()
	if err := e.Exec(`name = "Aru"; n = 3; half = 1.5; ok = true`); err != nil {
		t.Fatalf("Exec: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"Hi {name}!", "Hi Aru!"},
		{"{n} apples", "3 apples"},
		{"{n + 1}", "4"},
		{"{half}", "1.5"},
		{"{ok}", "true"},
		{"{missing}", ""},
		{"{}", ""},
		{"open { brace", "open { brace"},
	}

	for _, tt := range tests {
		got, err := e.Interpolate(tt.in)
		if err != nil {
			t.Errorf("Interpolate(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Interpolate(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvTruthy(t *testing.T) {
	e := NewEnv()
	_ = e.Exec("a = 0; b = false")

	tests := []struct {
		expr string
		want bool
	}{
		{"a", true}, // zero is truthy in Lua
		{"b", false},
		{"nil", false},
		{"a == 0", true},
		{"undefined_var", false},
	}
	for _, tt := range tests {
		got, err := e.Truthy(tt.expr)
		if err != nil {
			t.Errorf("Truthy(%q): %v", tt.expr, err)
		}
		if got != tt.want {
			t.Errorf("Truthy(%q) = %v, expected %v", tt.expr, got, tt.want)
		}
	}

	if _, err := e.Truthy("1 +"); err == nil {
		t.Error("expected syntax error")
	}
}

func TestEnvSandbox(t *testing.T) {
	e := NewEnv()
	if err := e.Exec(`io.write("x")`); err == nil {
		t.Error("io library should not be available")
	}
	for _, name := range []string{"dofile", "loadfile", "load", "require"} {
		ok, err := e.Truthy(name + " == nil")
		if err != nil || !ok {
			t.Errorf("%s should not be available (err %v)", name, err)
		}
	}
	if err := e.Exec(`x = math.floor(2.7)`); err != nil {
		t.Errorf("math should be available: %v", err)
	}
	if e.Get("x") != float64(2) {
		t.Errorf("x = %v", e.Get("x"))
	}
}

func TestLuaLiteral(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{true, "true"},
		{3, "3"},
		{2.5, "2.5"},
		{"a\"b", `"a\"b"`},
	}
	for _, tt := range tests {
		got, err := LuaLiteral(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("LuaLiteral(%v) = %q, %v", tt.in, got, err)
		}
	}
	if _, err := LuaLiteral([]int{1}); err == nil {
		t.Error("expected error for slice")
	}
}
