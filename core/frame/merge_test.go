package frame

import (
	"testing"
)

func mustHeaders(t *testing.T, pairs ...string) *Headers {
	t.Helper()
	h := NewHeaders()
	for i := 0; i < len(pairs); i += 2 {
		if err := h.Set(pairs[i], StringValue(pairs[i+1])); err != nil {
			t.Fatal(err)
		}
	}
	return h
}

func TestParseMergePolicy(t *testing.T) {
	tests := []struct {
		token string
		want  MergePolicy
	}{
		{"", MergeNone},
		{"none", MergeNone},
		{"NONE", MergeNone},
		{"left", MergeLeft},
		{"Right", MergeRight},
	}
	for _, tt := range tests {
		got, err := ParseMergePolicy(tt.token)
		if err != nil {
			t.Fatalf("ParseMergePolicy(%q): %v", tt.token, err)
		}
		if got != tt.want {
			t.Errorf("ParseMergePolicy(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
	if _, err := ParseMergePolicy("both"); err == nil {
		t.Error("invalid policy accepted")
	}
}

func TestMergeHeaders(t *testing.T) {
	left := mustHeaders(t, "A", "left-a", "B", "left-b")
	right := mustHeaders(t, "B", "right-b", "C", "right-c")

	t.Run("left wins on collision", func(t *testing.T) {
		out := MergeHeaders(left, right, MergeLeft)
		if v, _ := out.Get("B"); v.Str() != "left-b" {
			t.Errorf("B = %q, want left-b", v.Str())
		}
		if out.Len() != 3 {
			t.Errorf("len = %d, want 3", out.Len())
		}
	})
	t.Run("right wins on collision", func(t *testing.T) {
		out := MergeHeaders(left, right, MergeRight)
		if v, _ := out.Get("B"); v.Str() != "right-b" {
			t.Errorf("B = %q, want right-b", v.Str())
		}
	})
	t.Run("none yields empty", func(t *testing.T) {
		if out := MergeHeaders(left, right, MergeNone); out.Len() != 0 {
			t.Errorf("len = %d, want 0", out.Len())
		}
	})
}

func TestConcat(t *testing.T) {
	f1, err := New(NewIntColumn("A", []int64{1, 2}), NewStringColumn("B", []string{"x", "y"}))
	if err != nil {
		t.Fatal(err)
	}
	f1.SetHeaders(mustHeaders(t, "TITLE", "one"))
	f2, err := New(NewIntColumn("A", []int64{3}), NewStringColumn("B", []string{"z"}))
	if err != nil {
		t.Fatal(err)
	}
	f2.SetHeaders(mustHeaders(t, "TITLE", "two", "EXTRA", "e"))

	out, err := Concat([]*Frame{f1, f2}, MergeRight, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", out.NumRows())
	}
	a, _ := out.Column("A")
	if a.(*IntColumn).At(2) != 3 {
		t.Errorf("A[2] = %v, want 3", a.(*IntColumn).At(2))
	}
	if v, _ := out.Headers().Get("TITLE"); v.Str() != "two" {
		t.Errorf("TITLE = %q, want two", v.Str())
	}
	if !out.Headers().Has("EXTRA") {
		t.Error("EXTRA header lost in merge")
	}
}

func TestConcatSchemaMismatch(t *testing.T) {
	f1, _ := New(NewIntColumn("A", []int64{1}))
	f2, _ := New(NewFloatColumn("A", []float64{1}))
	if _, err := Concat([]*Frame{f1, f2}, MergeNone, nil); err == nil {
		t.Error("kind mismatch accepted")
	}
	f3, _ := New(NewIntColumn("B", []int64{1}))
	if _, err := Concat([]*Frame{f1, f3}, MergeNone, nil); err == nil {
		t.Error("name mismatch accepted")
	}
	if _, err := Concat(nil, MergeNone, nil); err == nil {
		t.Error("empty input accepted")
	}
}

func TestConcatNewHeadersWin(t *testing.T) {
	f1, _ := New(NewIntColumn("A", []int64{1}))
	f1.SetHeaders(mustHeaders(t, "TITLE", "old"))
	replacement := mustHeaders(t, "TITLE", "new")
	out, err := Concat([]*Frame{f1}, MergeLeft, replacement)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := out.Headers().Get("TITLE"); v.Str() != "new" {
		t.Errorf("TITLE = %q, want new", v.Str())
	}
}

func TestMerge(t *testing.T) {
	left, _ := New(
		NewStringColumn("NAME", []string{"BPM.1", "BPM.2", "BPM.3"}),
		NewFloatColumn("S", []float64{0, 1, 2}),
		NewFloatColumn("BETX", []float64{10, 20, 30}),
	)
	right, _ := New(
		NewStringColumn("NAME", []string{"BPM.2", "BPM.3", "BPM.4"}),
		NewFloatColumn("BETX", []float64{21, 31, 41}),
	)

	out, err := Merge(left, right, "NAME", MergeNone, nil)
	if err != nil {
		t.Fatal(err)
	}
	// inner join keeps only BPM.2 and BPM.3
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	if _, ok := out.Column("BETX_x"); !ok {
		t.Error("left shared column not suffixed _x")
	}
	if _, ok := out.Column("BETX_y"); !ok {
		t.Error("right shared column not suffixed _y")
	}
	if _, ok := out.Column("S"); !ok {
		t.Error("unshared column lost")
	}
	bx, _ := out.Column("BETX_x")
	if bx.(*FloatColumn).At(0) != 20 {
		t.Errorf("BETX_x[0] = %v, want 20", bx.(*FloatColumn).At(0))
	}
}

func TestMergeMissingKey(t *testing.T) {
	left, _ := New(NewStringColumn("NAME", []string{"a"}))
	right, _ := New(NewStringColumn("OTHER", []string{"a"}))
	if _, err := Merge(left, right, "NAME", MergeNone, nil); err == nil {
		t.Error("missing key column accepted")
	}
}
