package transform_test

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/mpyw/jvmflow/internal/analysis"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/listing"
	"github.com/mpyw/jvmflow/internal/transform"
)

func analyze(t *testing.T, src string) *analysis.Analysis {
	t.Helper()
	methods, err := listing.Parse(strings.NewReader(".class demo/T\n" + src))
	if err != nil {
		t.Fatalf("listing.Parse() error = %v", err)
	}
	a, err := analysis.New().Analyze(context.Background(), methods[0])
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return a
}

// body renders the instructions of m, one per line.
func body(m *insn.Method) string {
	lines := make([]string, len(m.Instructions))
	for i, in := range m.Instructions {
		lines[i] = in.String()
	}
	return strings.Join(lines, "\n")
}

func TestDeadCode(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []int
	}{
		{
			name: "nothing dead",
			src: `
.method static f()I
    ICONST_1
    IRETURN
.end method`,
			want: nil,
		},
		{
			name: "after goto",
			src: `
.method static f()I
    ICONST_1
    GOTO L1
    ICONST_2
    POP
L1:
    IRETURN
.end method`,
			want: []int{2, 3},
		},
		{
			name: "labels and line numbers are never dead",
			src: `
.method static f()V
    RETURN
L9:
    LINENUMBER 3 L9
    NOP
    RETURN
.end method`,
			want: []int{3, 4},
		},
		{
			name: "abstract",
			src: `
.method abstract f()V
.end method`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transform.DeadCode(analyze(t, tt.src))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeadCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoveDeadCode(t *testing.T) {
	a := analyze(t, `
.method static f()I
    ICONST_1
    GOTO L1
    ICONST_2
    POP
L1:
    IRETURN
.end method`)
	before := body(a.Method)

	got := transform.RemoveDeadCode(a)
	want := "ICONST_1\nGOTO L1\nL1:\nIRETURN"
	if body(got) != want {
		t.Errorf("RemoveDeadCode() body =\n%s\nwant\n%s", body(got), want)
	}
	if body(a.Method) != before {
		t.Error("RemoveDeadCode() modified the analyzed method")
	}

	// The result analyzes cleanly with nothing left to remove.
	again, err := analysis.New().Analyze(context.Background(), got)
	if err != nil {
		t.Fatalf("reanalyze error = %v", err)
	}
	if dead := transform.DeadCode(again); len(dead) != 0 {
		t.Errorf("DeadCode() after removal = %v", dead)
	}
}

func TestRemoveDeadCode_TryCatch(t *testing.T) {
	a := analyze(t, `
.method static f()V
.catch java/lang/Exception from L0 to L1 using L2
.catch any from L3 to L4 using L2
L3:
    RETURN
L0:
    NOP
L1:
    RETURN
L4:
L2:
    POP
    RETURN
.end method`)

	got := transform.RemoveDeadCode(a)
	if len(got.TryCatch) != 1 || got.TryCatch[0].Start != "L3" {
		t.Errorf("TryCatch = %+v, want only the live L3 range", got.TryCatch)
	}

	var buf bytes.Buffer
	if err := listing.PrintAll(&buf, []*insn.Method{got}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "NOP") {
		t.Errorf("dead NOP survived:\n%s", buf.String())
	}
}

func TestRemoveDeadCode_NothingDead(t *testing.T) {
	a := analyze(t, `
.method static f(I)I
    ILOAD 0
    IRETURN
.end method`)

	got := transform.RemoveDeadCode(a)
	if got == a.Method {
		t.Error("RemoveDeadCode() should return a copy")
	}
	if body(got) != body(a.Method) {
		t.Errorf("body = %q, want %q", body(got), body(a.Method))
	}
}
