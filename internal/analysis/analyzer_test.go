package analysis_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mpyw/jvmflow/internal/analysis"
	"github.com/mpyw/jvmflow/internal/cfg"
	"github.com/mpyw/jvmflow/internal/frame"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/interp"
	"github.com/mpyw/jvmflow/internal/listing"
)

// parse returns the single method of a listing.
func parse(t *testing.T, src string) *insn.Method {
	t.Helper()
	methods, err := listing.Parse(strings.NewReader(".class demo/T\n" + src))
	if err != nil {
		t.Fatalf("listing.Parse() error = %v", err)
	}
	if len(methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(methods))
	}
	return methods[0]
}

func analyze(t *testing.T, src string) *analysis.Analysis {
	t.Helper()
	a, err := analysis.New().Analyze(context.Background(), parse(t, src))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return a
}

// frameAt returns the frame string before instruction i, or "nil".
func frameAt(a *analysis.Analysis, i int) string {
	if a.Frames[i] == nil {
		return "nil"
	}
	return a.Frames[i].String()
}

func TestAnalyze_Straight(t *testing.T) {
	a := analyze(t, `
.method static add(IJ)J
    ILOAD 0
    I2L
    LLOAD 1
    LADD
    LRETURN
.end method`)

	want := []string{
		"IJ. ",
		"IJ. I",
		"IJ. J",
		"IJ. JJ",
		"IJ. J",
	}
	for i, w := range want {
		if got := frameAt(a, i); got != w {
			t.Errorf("frame %d = %q, want %q", i, got, w)
		}
	}
}

func TestAnalyze_InstanceEntry(t *testing.T) {
	a := analyze(t, `
.method get(Ljava/lang/String;)Ljava/lang/String;
.limit locals 3
    ALOAD 1
    ARETURN
.end method`)

	if got, want := frameAt(a, 0), "Ldemo/T;Ljava/lang/String;. "; got != want {
		t.Errorf("entry frame = %q, want %q", got, want)
	}
}

func TestAnalyze_JoinWidens(t *testing.T) {
	a := analyze(t, `
.method static pick(Z)Ljava/lang/Object;
    ILOAD 0
    IFEQ L1
    LDC "s"
    GOTO L2
L1:
    NEW java/lang/StringBuilder
L2:
    ARETURN
.end method`)

	// Instruction 6 is the label where both branches meet.
	if got, want := frameAt(a, 6), "Z Ljava/lang/Object;"; got != want {
		t.Errorf("join frame = %q, want %q", got, want)
	}
}

func TestAnalyze_IntStorableJoin(t *testing.T) {
	a := analyze(t, `
.method static f(ZC)I
    ILOAD 0
    IFEQ L1
    ILOAD 0
    GOTO L2
L1:
    ILOAD 1
L2:
    IRETURN
.end method`)

	// ILOAD pushes the local as is, so Z meets C at the join.
	if got, want := frameAt(a, 6), "ZC I"; got != want {
		t.Errorf("join frame = %q, want %q", got, want)
	}
}

func TestAnalyze_Loop(t *testing.T) {
	a := analyze(t, `
.method static count(I)I
    ICONST_0
    ISTORE 1
L0:
    ILOAD 1
    ILOAD 0
    IF_ICMPGE L1
    IINC 1 1
    GOTO L0
L1:
    ILOAD 1
    IRETURN
.end method`)

	if got, want := frameAt(a, 2), "II "; got != want {
		t.Errorf("loop head frame = %q, want %q", got, want)
	}
	// The back edge brings nothing new, so every instruction runs once.
	if a.Steps != len(a.Method.Instructions) {
		t.Errorf("Steps = %d, want %d", a.Steps, len(a.Method.Instructions))
	}
	loops := a.Graph.DetectLoops()
	if !loops.IsInLoop(6) || loops.IsInLoop(9) {
		t.Error("IINC should be in the loop and the exit should not")
	}
}

func TestAnalyze_DeadCode(t *testing.T) {
	a := analyze(t, `
.method static f()I
    ICONST_1
    GOTO L1
    ICONST_2
    POP
L1:
    IRETURN
.end method`)

	for i, wantNil := range []bool{false, false, true, true, false, false} {
		if got := a.Frames[i] == nil; got != wantNil {
			t.Errorf("frame %d nil = %v, want %v", i, got, wantNil)
		}
	}
}

func TestAnalyze_Handler(t *testing.T) {
	a := analyze(t, `
.method static f(Ljava/lang/Object;)V
.catch java/io/IOException from L0 to L1 using L2
.catch any from L0 to L1 using L3
L0:
    ICONST_0
    POP
L1:
    RETURN
L2:
    ASTORE 0
    RETURN
L3:
    ATHROW
.end method`)

	if got, want := frameAt(a, 6), "Ljava/lang/Object; Ljava/io/IOException;"; got != want {
		t.Errorf("catch frame = %q, want %q", got, want)
	}
	if got, want := frameAt(a, 9), "Ljava/lang/Object; Ljava/lang/Throwable;"; got != want {
		t.Errorf("finally frame = %q, want %q", got, want)
	}
	if got, want := frameAt(a, 7), "Ljava/io/IOException; "; got != want {
		t.Errorf("frame after ASTORE = %q, want %q", got, want)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, err error)
	}{
		{
			name: "illegal constant",
			src: `
.method static f()V
    LDC Dynamic(x I Handle(6 demo/B.bsm ()I))
    POP
    RETURN
.end method`,
			check: func(t *testing.T, err error) {
				var ae *analysis.Error
				if !errors.As(err, &ae) || ae.Index != 0 {
					t.Fatalf("error = %v, want *analysis.Error at 0", err)
				}
				var ice *interp.IllegalConstantError
				if !errors.As(err, &ice) {
					t.Error("should unwrap to *interp.IllegalConstantError")
				}
				if !errors.Is(err, interp.ErrIllegalOperand) {
					t.Error("should match ErrIllegalOperand")
				}
			},
		},
		{
			name: "invalid array type",
			src: `
.method static f()V
    ICONST_1
    NEWARRAY 42
    POP
    RETURN
.end method`,
			check: func(t *testing.T, err error) {
				var iae *interp.InvalidArrayTypeError
				if !errors.As(err, &iae) || iae.Code != 42 {
					t.Errorf("error = %v, want *InvalidArrayTypeError", err)
				}
			},
		},
		{
			name: "dimension count",
			src: `
.method static f()V
    ICONST_1
    ICONST_2
    ICONST_3
    MULTIANEWARRAY [I 3
    POP
    RETURN
.end method`,
			check: func(t *testing.T, err error) {
				var ae *analysis.Error
				if !errors.As(err, &ae) || ae.Index != 3 {
					t.Fatalf("error = %v, want *analysis.Error at 3", err)
				}
				var oe *interp.OperandError
				if !errors.As(err, &oe) || !errors.Is(err, interp.ErrIllegalOperand) {
					t.Errorf("error = %v, want *interp.OperandError", err)
				}
			},
		},
		{
			name: "stack mismatch at join",
			src: `
.method static f(I)V
    ILOAD 0
    IFEQ L1
    ICONST_0
L1:
    RETURN
.end method`,
			check: func(t *testing.T, err error) {
				var ise *frame.IncompatibleStackError
				if !errors.As(err, &ise) {
					t.Errorf("error = %v, want *IncompatibleStackError", err)
				}
			},
		},
		{
			name: "falls off",
			src: `
.method static f()V
    NOP
.end method`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, analysis.ErrFallsOff) {
					t.Errorf("error = %v, want ErrFallsOff", err)
				}
			},
		},
		{
			name: "subroutine",
			src: `
.method static f()V
    JSR L0
    RETURN
L0:
    ASTORE 0
    RET 0
.end method`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, cfg.ErrSubroutine) {
					t.Errorf("error = %v, want ErrSubroutine", err)
				}
			},
		},
		{
			name: "too few locals",
			src: `
.method static f(JJ)V
.limit locals 2
    RETURN
.end method`,
			check: func(t *testing.T, err error) {
				var ae *analysis.Error
				if !errors.As(err, &ae) || ae.Index != -1 {
					t.Errorf("error = %v, want signature error", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analysis.New().Analyze(context.Background(), parse(t, tt.src))
			if err == nil {
				t.Fatal("Analyze() should fail")
			}
			tt.check(t, err)
		})
	}
}

func TestAnalyze_Abstract(t *testing.T) {
	a := analyze(t, `
.method public abstract f()V
.end method`)
	if len(a.Frames) != 0 || a.Graph != nil {
		t.Errorf("abstract method analysis = %+v", a)
	}
}

func TestAnalyze_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analysis.New().Analyze(ctx, parse(t, `
.method static f()V
    RETURN
.end method`))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	src := `
.method static f(I)Ljava/lang/Object;
    ILOAD 0
    TABLESWITCH 0 L1 L2 default L3
L1:
    LDC "a"
    ARETURN
L2:
    ACONST_NULL
    ARETURN
L3:
    ICONST_1
    ANEWARRAY java/lang/String
    ARETURN
.end method`
	a1 := analyze(t, src)
	a2 := analyze(t, src)
	for i := range a1.Frames {
		if frameAt(a1, i) != frameAt(a2, i) {
			t.Errorf("frame %d differs: %q vs %q", i, frameAt(a1, i), frameAt(a2, i))
		}
	}
}
