package fixed

import (
	"testing"

	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/types"
)

func testDefinition() Definition {
	return Definition{
		Filename: "beta_{}.tfs",
		Columns: []ColumnDef{
			{Name: "NAME", Kind: types.String},
			{Name: "S", Kind: types.Float, Unit: "m"},
			{Name: "BET{}", Kind: types.Float, Unit: "m"},
		},
		Headers: []ColumnDef{
			{Name: "TITLE", Kind: types.String},
			{Name: "Q{}", Kind: types.Float},
		},
		Index: "NAME",
	}
}

func TestColumnDefPlane(t *testing.T) {
	d := ColumnDef{Name: "BET{}", Kind: types.Float, Unit: "m"}
	if got := d.Plane("x").Name; got != "BETX" {
		t.Errorf("Plane(x) name = %q, want BETX", got)
	}
	if got := d.Plane("Y").Name; got != "BETY" {
		t.Errorf("Plane(Y) name = %q, want BETY", got)
	}
	plain := ColumnDef{Name: "S", Kind: types.Float}
	if got := plain.Plane("x").Name; got != "S" {
		t.Errorf("untemplated name changed to %q", got)
	}
}

func TestWriteFillsDeclaredDefaults(t *testing.T) {
	dir := t.TempDir()
	def := testDefinition()
	f, err := New(def, "x", dir)
	if err != nil {
		t.Fatal(err)
	}
	// only NAME and S are set; BETX must appear zero-filled on disk
	if err := f.SetColumn(frame.NewStringColumn("NAME", []string{"a", "b"})); err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn(frame.NewFloatColumn("S", []float64{0, 1})); err != nil {
		t.Fatal(err)
	}
	if err := f.Write(); err != nil {
		t.Fatal(err)
	}

	g, err := New(def, "x", dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Read(); err != nil {
		t.Fatal(err)
	}
	bet, ok := g.Inner().Column("BETX")
	if !ok {
		t.Fatal("BETX missing from written file")
	}
	if bet.Kind() != types.Float || bet.Len() != 2 {
		t.Fatalf("BETX is %v with %d rows", bet.Kind(), bet.Len())
	}
	for i := 0; i < 2; i++ {
		if bet.(*frame.FloatColumn).At(i) != 0 {
			t.Errorf("BETX[%d] = %v, want 0", i, bet.(*frame.FloatColumn).At(i))
		}
	}
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	f, err := New(testDefinition(), "X", dir)
	if err != nil {
		t.Fatal(err)
	}
	want := dir + "/beta_x.tfs"
	if got := f.Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestSetColumnEnforcesDeclaration(t *testing.T) {
	f, err := New(testDefinition(), "x", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn(frame.NewFloatColumn("BETX", []float64{1, 2})); err != nil {
		t.Errorf("declared column rejected: %v", err)
	}
	if err := f.SetColumn(frame.NewFloatColumn("ALFX", []float64{1})); err == nil {
		t.Error("undeclared column accepted")
	}
	if err := f.SetColumn(frame.NewIntColumn("S", []int64{1})); err == nil {
		t.Error("kind mismatch accepted")
	}
}

func TestSetHeaderEnforcesDeclaration(t *testing.T) {
	f, err := New(testDefinition(), "y", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetHeader("QY", frame.FloatValue(60.32)); err != nil {
		t.Errorf("declared header rejected: %v", err)
	}
	if err := f.SetHeader("UNKNOWN", frame.FloatValue(1)); err == nil {
		t.Error("undeclared header accepted")
	}
	if err := f.SetHeader("TITLE", frame.FloatValue(1)); err == nil {
		t.Error("header kind mismatch accepted")
	}
}

func TestValidateDefinitionsCatchesSneakedColumns(t *testing.T) {
	f, err := New(testDefinition(), "x", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := f.ValidateDefinitions(); err != nil {
		t.Fatalf("fresh frame invalid: %v", err)
	}
	// bypass the guarded setter
	if err := f.Inner().AddColumn(frame.NewFloatColumn("SNEAKED", nil)); err != nil {
		t.Fatal(err)
	}
	if err := f.ValidateDefinitions(); err == nil {
		t.Error("undeclared column not caught")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	def := testDefinition()
	f, err := New(def, "x", dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn(frame.NewStringColumn("NAME", []string{"BPM.1", "BPM.2"})); err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn(frame.NewFloatColumn("S", []float64{0, 1})); err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn(frame.NewFloatColumn("BETX", []float64{10, 20})); err != nil {
		t.Fatal(err)
	}
	if err := f.SetHeader("TITLE", frame.StringValue("optics")); err != nil {
		t.Fatal(err)
	}
	if err := f.Inner().PromoteIndex("NAME"); err != nil {
		t.Fatal(err)
	}
	if err := f.Write(); err != nil {
		t.Fatal(err)
	}

	g, err := New(def, "x", dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Read(); err != nil {
		t.Fatal(err)
	}
	inner := g.Inner()
	if inner.Index() == nil || inner.Index().Name() != "NAME" {
		t.Error("index not restored")
	}
	bet, _ := inner.Column("BETX")
	if bet.(*frame.FloatColumn).At(1) != 20 {
		t.Errorf("BETX[1] = %v, want 20", bet.(*frame.FloatColumn).At(1))
	}
	if v, _ := inner.Headers().Get("TITLE"); v.Str() != "optics" {
		t.Errorf("TITLE = %q", v.Str())
	}
}
