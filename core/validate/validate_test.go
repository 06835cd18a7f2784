package validate

import (
	stderrors "errors"
	"testing"

	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/frame"
)

func TestParseProfile(t *testing.T) {
	tests := []struct {
		token string
		want  Profile
	}{
		{"", ProfileNone},
		{"madx", ProfileStrict},
		{"MAD-X", ProfileStrict},
		{"madng", ProfilePermissive},
		{"Mad-NG", ProfilePermissive},
	}
	for _, tt := range tests {
		got, err := ParseProfile(tt.token)
		if err != nil {
			t.Fatalf("ParseProfile(%q): %v", tt.token, err)
		}
		if got != tt.want {
			t.Errorf("ParseProfile(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
	if _, err := ParseProfile("sixtrack"); err == nil {
		t.Error("unknown profile accepted")
	}
}

func TestParsePolicy(t *testing.T) {
	for token, want := range map[string]Policy{"": PolicyWarn, "warn": PolicyWarn, "RAISE": PolicyRaise} {
		got, err := ParsePolicy(token)
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", token, err)
		}
		if got != want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", token, got, want)
		}
	}
	if _, err := ParsePolicy("explode"); err == nil {
		t.Error("unknown policy accepted")
	}
}

// A null header value is rejected under the strict profile and accepted under
// the permissive one.
func TestNullHeaderByProfile(t *testing.T) {
	f, err := frame.New(frame.NewFloatColumn("S", []float64{1}))
	if err != nil {
		t.Fatal(err)
	}
	f.Headers().Set("TYPE", frame.StringValue("t")) //nolint:errcheck
	f.Headers().Set("EMPTY", frame.NullValue())     //nolint:errcheck

	var want *errors.IncompatibleNullHeaderError
	if err := Validate(f, "test", PolicyWarn, ProfileStrict); !stderrors.As(err, &want) {
		t.Errorf("strict: got %v, want IncompatibleNullHeaderError", err)
	}
	if err := Validate(f, "test", PolicyWarn, ProfilePermissive); err != nil {
		t.Errorf("permissive: %v", err)
	}
}

// A column name with an embedded space is rejected under both profiles.
func TestSpaceInColumnName(t *testing.T) {
	f, err := frame.New(frame.NewFloatColumn("BPM RES", []float64{1}))
	if err != nil {
		t.Fatal(err)
	}
	f.Headers().Set("TYPE", frame.StringValue("t")) //nolint:errcheck

	for _, profile := range []Profile{ProfileStrict, ProfilePermissive} {
		var want *errors.SpaceInColumnNameError
		if err := Validate(f, "test", PolicyWarn, profile); !stderrors.As(err, &want) {
			t.Errorf("profile %v: got %v, want SpaceInColumnNameError", profile, err)
		}
	}
}

func TestEmptyColumnName(t *testing.T) {
	f, err := frame.New(frame.NewFloatColumn("", []float64{1}))
	if err != nil {
		t.Fatal(err)
	}
	var want *errors.NonStringColumnNameError
	if err := Validate(f, "test", PolicyWarn, ProfilePermissive); !stderrors.As(err, &want) {
		t.Errorf("got %v, want NonStringColumnNameError", err)
	}
}

// Duplicate column names raise only under the raise policy.
func TestDuplicateColumnsByPolicy(t *testing.T) {
	f, err := frame.New(
		frame.NewFloatColumn("A", []float64{1}),
		frame.NewFloatColumn("A", []float64{2}),
	)
	if err != nil {
		t.Fatal(err)
	}

	var want *errors.DuplicateColumnsError
	if err := Validate(f, "test", PolicyRaise, ProfilePermissive); !stderrors.As(err, &want) {
		t.Errorf("raise: got %v, want DuplicateColumnsError", err)
	}
	if err := Validate(f, "test", PolicyWarn, ProfilePermissive); err != nil {
		t.Errorf("warn: %v", err)
	}
}

func TestDuplicateIndexByPolicy(t *testing.T) {
	f, err := frame.New(
		frame.NewStringColumn("NAME", []string{"a", "a"}),
		frame.NewFloatColumn("S", []float64{0, 1}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.PromoteIndex("NAME"); err != nil {
		t.Fatal(err)
	}

	var want *errors.DuplicateIndexError
	if err := Validate(f, "test", PolicyRaise, ProfilePermissive); !stderrors.As(err, &want) {
		t.Errorf("raise: got %v, want DuplicateIndexError", err)
	}
	if err := Validate(f, "test", PolicyWarn, ProfilePermissive); err != nil {
		t.Errorf("warn: %v", err)
	}
}

// A cell holding a list can never be rendered; validation rejects it under
// every profile that runs.
func TestIterableCellValue(t *testing.T) {
	col := frame.NewColumn("WEIRD", []any{[]float64{1, 2}, 3.0})
	f, err := frame.New(col)
	if err != nil {
		t.Fatal(err)
	}

	var want *errors.IterableCellValueError
	if err := Validate(f, "test", PolicyWarn, ProfilePermissive); !stderrors.As(err, &want) {
		t.Fatalf("got %v, want IterableCellValueError", err)
	}
	if len(want.Rows) != 1 || want.Rows[0] != 0 {
		t.Errorf("offending rows = %v, want [0]", want.Rows)
	}
}

// A missing TYPE header under the strict profile is self-healed with a
// placeholder entry instead of raising.
func TestStrictAddsMissingTypeHeader(t *testing.T) {
	f, err := frame.New(frame.NewFloatColumn("S", []float64{1}))
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(f, "test", PolicyWarn, ProfileStrict); err != nil {
		t.Fatal(err)
	}
	if !f.Headers().Has("TYPE") {
		t.Error("TYPE header not auto-inserted")
	}
}

func TestStrictRequiresHeaderCapability(t *testing.T) {
	f, err := frame.New(frame.NewFloatColumn("S", []float64{1}))
	if err != nil {
		t.Fatal(err)
	}
	f.SetHeaders(nil)
	var want *errors.MissingHeaderBlockError
	if err := Validate(f, "test", PolicyWarn, ProfileStrict); !stderrors.As(err, &want) {
		t.Errorf("got %v, want MissingHeaderBlockError", err)
	}
	// permissive has no header requirements at all
	if err := Validate(f, "test", PolicyWarn, ProfilePermissive); err != nil {
		t.Errorf("permissive: %v", err)
	}
}

func TestStrictRejectsExoticColumns(t *testing.T) {
	t.Run("boolean column", func(t *testing.T) {
		f, _ := frame.New(frame.NewBoolColumn("OK", []bool{true}))
		f.Headers().Set("TYPE", frame.StringValue("t")) //nolint:errcheck
		var want *errors.IncompatibleBooleanColumnError
		if err := Validate(f, "test", PolicyWarn, ProfileStrict); !stderrors.As(err, &want) {
			t.Errorf("got %v, want IncompatibleBooleanColumnError", err)
		}
		if err := Validate(f, "test", PolicyWarn, ProfilePermissive); err != nil {
			t.Errorf("permissive: %v", err)
		}
	})
	t.Run("complex column", func(t *testing.T) {
		f, _ := frame.New(frame.NewComplexColumn("Z", []complex128{1 + 2i}))
		f.Headers().Set("TYPE", frame.StringValue("t")) //nolint:errcheck
		var want *errors.IncompatibleComplexColumnError
		if err := Validate(f, "test", PolicyWarn, ProfileStrict); !stderrors.As(err, &want) {
			t.Errorf("got %v, want IncompatibleComplexColumnError", err)
		}
		if err := Validate(f, "test", PolicyWarn, ProfilePermissive); err != nil {
			t.Errorf("permissive: %v", err)
		}
	})
	t.Run("boolean header", func(t *testing.T) {
		f, _ := frame.New(frame.NewFloatColumn("S", []float64{1}))
		f.Headers().Set("FLAG", frame.BoolValue(true)) //nolint:errcheck
		var want *errors.IncompatibleBooleanHeaderError
		if err := Validate(f, "test", PolicyWarn, ProfileStrict); !stderrors.As(err, &want) {
			t.Errorf("got %v, want IncompatibleBooleanHeaderError", err)
		}
	})
	t.Run("complex header", func(t *testing.T) {
		f, _ := frame.New(frame.NewFloatColumn("S", []float64{1}))
		f.Headers().Set("Z", frame.ComplexValue(1+2i)) //nolint:errcheck
		var want *errors.IncompatibleComplexHeaderError
		if err := Validate(f, "test", PolicyWarn, ProfileStrict); !stderrors.As(err, &want) {
			t.Errorf("got %v, want IncompatibleComplexHeaderError", err)
		}
	})
}

// Whatever passes the strict profile must also pass the permissive one.
func TestProfileMonotonicity(t *testing.T) {
	frames := make([]*frame.Frame, 0, 3)

	plain, _ := frame.New(
		frame.NewFloatColumn("S", []float64{0, 1}),
		frame.NewIntColumn("N", []int64{1, 2}),
	)
	plain.Headers().Set("TYPE", frame.StringValue("t")) //nolint:errcheck
	frames = append(frames, plain)

	withStrings, _ := frame.New(frame.NewStringColumn("NAME", []string{"a", "b"}))
	withStrings.Headers().Set("TYPE", frame.StringValue("t")) //nolint:errcheck
	frames = append(frames, withStrings)

	empty, _ := frame.New(frame.NewFloatColumn("S", nil))
	empty.Headers().Set("TYPE", frame.StringValue("t")) //nolint:errcheck
	frames = append(frames, empty)

	for i, f := range frames {
		if err := Validate(f, "monotonic", PolicyRaise, ProfileStrict); err != nil {
			t.Fatalf("frame %d fails strict: %v", i, err)
		}
		if err := Validate(f, "monotonic", PolicyRaise, ProfilePermissive); err != nil {
			t.Errorf("frame %d passes strict but fails permissive: %v", i, err)
		}
	}
}

func TestProfileNoneSkipsEverything(t *testing.T) {
	// even deal-breakers pass when validation is off
	f, _ := frame.New(frame.NewFloatColumn("BPM RES", []float64{1}))
	if err := Validate(f, "test", PolicyRaise, ProfileNone); err != nil {
		t.Errorf("ProfileNone ran checks: %v", err)
	}
}
