package frame

import (
	"testing"

	"github.com/pylhc/tfs-go/core/types"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"True", true},
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"False", false},
		{"false", false},
		{"FALSE", false},
		{"0", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseBool(tt.raw)
			if err != nil {
				t.Fatalf("ParseBool(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseBool(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseBoolRejects(t *testing.T) {
	for _, raw := range []string{"yes", "no", "2", "", "tru"} {
		if _, err := ParseBool(raw); err == nil {
			t.Errorf("ParseBool(%q) succeeded, want error", raw)
		}
	}
}

func TestParseComplex(t *testing.T) {
	tests := []struct {
		raw  string
		want complex128
	}{
		{"1+2i", complex(1, 2)},
		{"1+2I", complex(1, 2)},
		{"1.5-0.5i", complex(1.5, -0.5)},
		{"3i", complex(0, 3)},
		{"4", complex(4, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseComplex(tt.raw)
			if err != nil {
				t.Fatalf("ParseComplex(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseComplex(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatComplex(t *testing.T) {
	tests := []struct {
		v    complex128
		want string
	}{
		{complex(1, 2), "1+2i"},
		{complex(1.5, -0.5), "1.5-0.5i"},
		{complex(0, 3), "0+3i"},
	}
	for _, tt := range tests {
		if got := FormatComplex(tt.v); got != tt.want {
			t.Errorf("FormatComplex(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		raw  string
		want Value
	}{
		{"string", "%s", "LHCB1", StringValue("LHCB1")},
		{"legacy string", "%08s", "LHCB1", StringValue("LHCB1")},
		{"int", "%d", "42", IntValue(42)},
		{"int short", "%hd", "7", IntValue(7)},
		{"float", "%le", "3.5", FloatValue(3.5)},
		{"float f", "%f", "-1e-3", FloatValue(-0.001)},
		{"bool", "%b", "true", BoolValue(true)},
		{"complex", "%lz", "1+1I", ComplexValue(complex(1, 1))},
		{"null ignores literal", "%n", "whatever", NullValue()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.tag, tt.raw)
			if err != nil {
				t.Fatalf("ParseValue(%q, %q): %v", tt.tag, tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseValue(%q, %q) = %+v, want %+v", tt.tag, tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseValueErrors(t *testing.T) {
	tests := []struct {
		tag string
		raw string
	}{
		{"%x", "1"},
		{"%d", "not-a-number"},
		{"%le", "abc"},
		{"%b", "maybe"},
		{"%lz", "zz"},
	}
	for _, tt := range tests {
		if _, err := ParseValue(tt.tag, tt.raw); err == nil {
			t.Errorf("ParseValue(%q, %q) succeeded, want error", tt.tag, tt.raw)
		}
	}
}

func TestValueNative(t *testing.T) {
	if got := IntValue(5).Native(); got != int64(5) {
		t.Errorf("IntValue(5).Native() = %v", got)
	}
	if got := NullValue().Native(); got != nil {
		t.Errorf("NullValue().Native() = %v, want nil", got)
	}
	if !NullValue().IsNull() {
		t.Error("NullValue().IsNull() = false")
	}
	if StringValue("").IsNull() {
		t.Error("empty string value reported as null")
	}
	if got := valueKind(t, "x"); got != types.String {
		t.Errorf("ValueOf string kind = %v", got)
	}
}

func valueKind(t *testing.T, v any) types.Kind {
	t.Helper()
	val, err := ValueOf(v)
	if err != nil {
		t.Fatalf("ValueOf(%v): %v", v, err)
	}
	return val.Kind()
}
