package interp

import (
	"errors"
	"testing"

	"github.com/mpyw/jvmflow/internal/descriptor"
	"github.com/mpyw/jvmflow/internal/insn"
	"github.com/mpyw/jvmflow/internal/opcode"
	"github.com/mpyw/jvmflow/internal/value"
)

func simple(op opcode.Op) insn.Instruction { return &insn.Simple{Opcode: op} }

// expectInternalError runs fn and fails unless it panics with *InternalError.
func expectInternalError(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if _, ok := r.(*InternalError); !ok {
			t.Fatalf("panic value = %#v, want *InternalError", r)
		}
	}()
	fn()
}

func TestNewValue(t *testing.T) {
	tests := []struct {
		name   string
		typ    descriptor.Type
		want   value.Value
		wantOK bool
	}{
		{"none", descriptor.Type{}, value.Uninitialized(), true},
		{"void", descriptor.Void, value.Value{}, false},
		{"boolean", descriptor.Boolean, value.Boolean(), true},
		{"char", descriptor.Char, value.Char(), true},
		{"byte", descriptor.Byte, value.Byte(), true},
		{"short", descriptor.Short, value.Short(), true},
		{"int", descriptor.Int, value.Int(), true},
		{"float", descriptor.Float, value.Float(), true},
		{"long", descriptor.Long, value.Long(), true},
		{"double", descriptor.Double, value.Double(), true},
		{"object", descriptor.MustObjectType("java/lang/String"), value.Reference("Ljava/lang/String;"), true},
		{"array", descriptor.MustParse("[[Ljava/lang/String;"), value.Reference("[[Ljava/lang/String;"), true},
	}

	in := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := in.NewValue(tt.typ)
			if ok != tt.wantOK {
				t.Fatalf("NewValue() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("NewValue() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("method sort is internal", func(t *testing.T) {
		expectInternalError(t, func() { in.NewValue(descriptor.MustParse("()V")) })
	})
}

func TestNewOperation(t *testing.T) {
	tests := []struct {
		name string
		in   insn.Instruction
		want value.Value
	}{
		{"ACONST_NULL", simple(opcode.AconstNull), value.Null()},
		{"ICONST_M1", simple(opcode.IconstM1), value.Int()},
		{"ICONST_5", simple(opcode.Iconst5), value.Int()},
		{"BIPUSH", &insn.IntOperand{Opcode: opcode.Bipush, Operand: 7}, value.Int()},
		{"SIPUSH", &insn.IntOperand{Opcode: opcode.Sipush, Operand: 300}, value.Int()},
		{"LCONST_0", simple(opcode.Lconst0), value.Long()},
		{"LCONST_1", simple(opcode.Lconst1), value.Long()},
		{"FCONST_2", simple(opcode.Fconst2), value.Float()},
		{"DCONST_1", simple(opcode.Dconst1), value.Double()},
		{"LDC int", &insn.Ldc{Value: insn.Integer(1)}, value.Int()},
		{"LDC float", &insn.Ldc{Value: insn.Float(1)}, value.Float()},
		{"LDC long", &insn.Ldc{Value: insn.Long(1)}, value.Long()},
		{"LDC double", &insn.Ldc{Value: insn.Double(1)}, value.Double()},
		{"LDC string", &insn.Ldc{Value: insn.String("s")}, value.Reference(StringDescriptor)},
		{"LDC class", &insn.Ldc{Value: insn.TypeConstant{Type: descriptor.MustObjectType("Foo")}}, value.Reference(ClassDescriptor)},
		{"LDC array class", &insn.Ldc{Value: insn.TypeConstant{Type: descriptor.MustParse("[I")}}, value.Reference(ClassDescriptor)},
		{"LDC method type", &insn.Ldc{Value: insn.TypeConstant{Type: descriptor.MustParse("(I)V")}}, value.Reference(MethodTypeDescriptor)},
		{"LDC handle", &insn.Ldc{Value: insn.Handle{Tag: insn.HInvokeStatic, Owner: "A", Name: "b", Desc: "()V"}}, value.Reference(MethodHandleDescriptor)},
		{"GETSTATIC int", &insn.Field{Opcode: opcode.Getstatic, Owner: "A", Name: "x", Desc: "I"}, value.Int()},
		{"GETSTATIC object", &insn.Field{Opcode: opcode.Getstatic, Owner: "A", Name: "x", Desc: "Ljava/io/PrintStream;"}, value.Reference("Ljava/io/PrintStream;")},
		{"NEW", &insn.TypeInsn{Opcode: opcode.New, Desc: "java/lang/StringBuilder"}, value.Reference("Ljava/lang/StringBuilder;")},
	}

	in := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := in.NewOperation(tt.in)
			if err != nil {
				t.Fatalf("NewOperation() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NewOperation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewOperation_IllegalConstant(t *testing.T) {
	tests := []struct {
		name string
		c    insn.Constant
	}{
		{"condy", insn.Dynamic{Name: "x", Desc: "I", Bootstrap: insn.Handle{Tag: insn.HInvokeStatic, Owner: "B", Name: "bsm", Desc: "()V"}}},
		{"primitive type", insn.TypeConstant{Type: descriptor.Int}},
	}

	in := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.NewOperation(&insn.Ldc{Value: tt.c})
			var ice *IllegalConstantError
			if !errors.As(err, &ice) {
				t.Fatalf("error = %v, want *IllegalConstantError", err)
			}
			if !errors.Is(err, ErrIllegalOperand) {
				t.Error("IllegalConstantError should match ErrIllegalOperand")
			}
		})
	}
}

func TestNewOperation_BadOperands(t *testing.T) {
	in := New()
	for _, tt := range []insn.Instruction{
		&insn.Field{Opcode: opcode.Getstatic, Owner: "A", Name: "x", Desc: "Q"},
		&insn.Field{Opcode: opcode.Getstatic, Owner: "A", Name: "x", Desc: "V"},
		&insn.TypeInsn{Opcode: opcode.New, Desc: "a;b"},
	} {
		t.Run(tt.String(), func(t *testing.T) {
			_, err := in.NewOperation(tt)
			if !errors.Is(err, ErrIllegalOperand) {
				t.Errorf("error = %v, want ErrIllegalOperand", err)
			}
		})
	}
}

func TestNewOperation_Internal(t *testing.T) {
	in := New()
	for _, op := range []opcode.Op{opcode.Iadd, opcode.Jsr, opcode.Ineg, opcode.Return} {
		t.Run(op.String(), func(t *testing.T) {
			expectInternalError(t, func() { _, _ = in.NewOperation(simple(op)) })
		})
	}
}

func TestUnaryOperation(t *testing.T) {
	tests := []struct {
		name   string
		in     insn.Instruction
		arg    value.Value
		want   value.Value
		wantOK bool
	}{
		{"INEG", simple(opcode.Ineg), value.Int(), value.Int(), true},
		{"IINC", &insn.Iinc{Index: 1, Increment: 1}, value.Int(), value.Int(), true},
		{"I2B", simple(opcode.I2b), value.Int(), value.Int(), true},
		{"I2C", simple(opcode.I2c), value.Int(), value.Int(), true},
		{"L2I", simple(opcode.L2i), value.Long(), value.Int(), true},
		{"D2F", simple(opcode.D2f), value.Double(), value.Float(), true},
		{"FNEG", simple(opcode.Fneg), value.Float(), value.Float(), true},
		{"I2L", simple(opcode.I2l), value.Int(), value.Long(), true},
		{"LNEG", simple(opcode.Lneg), value.Long(), value.Long(), true},
		{"F2D", simple(opcode.F2d), value.Float(), value.Double(), true},
		{"DNEG", simple(opcode.Dneg), value.Double(), value.Double(), true},
		{"IFEQ", &insn.Jump{Opcode: opcode.Ifeq, Label: "L"}, value.Int(), value.Value{}, false},
		{"IFNULL", &insn.Jump{Opcode: opcode.Ifnull, Label: "L"}, value.Null(), value.Value{}, false},
		{"TABLESWITCH", &insn.TableSwitch{Default: "L"}, value.Int(), value.Value{}, false},
		{"ARETURN", simple(opcode.Areturn), value.TopReference(), value.Value{}, false},
		{"ATHROW", simple(opcode.Athrow), value.TopReference(), value.Value{}, false},
		{"MONITORENTER", simple(opcode.Monitorenter), value.TopReference(), value.Value{}, false},
		{"PUTSTATIC", &insn.Field{Opcode: opcode.Putstatic, Owner: "A", Name: "x", Desc: "I"}, value.Int(), value.Value{}, false},
		{"GETFIELD", &insn.Field{Opcode: opcode.Getfield, Owner: "A", Name: "x", Desc: "[J"}, value.Reference("LA;"), value.Reference("[J"), true},
		{"NEWARRAY T_BOOLEAN", &insn.IntOperand{Opcode: opcode.Newarray, Operand: opcode.TBoolean}, value.Int(), value.Reference("[Z"), true},
		{"NEWARRAY T_LONG", &insn.IntOperand{Opcode: opcode.Newarray, Operand: opcode.TLong}, value.Int(), value.Reference("[J"), true},
		{"ANEWARRAY class", &insn.TypeInsn{Opcode: opcode.Anewarray, Desc: "java/lang/String"}, value.Int(), value.Reference("[Ljava/lang/String;"), true},
		{"ANEWARRAY array", &insn.TypeInsn{Opcode: opcode.Anewarray, Desc: "[I"}, value.Int(), value.Reference("[[I"), true},
		{"ARRAYLENGTH", simple(opcode.Arraylength), value.Reference("[I"), value.Int(), true},
		{"INSTANCEOF", &insn.TypeInsn{Opcode: opcode.Instanceof, Desc: "Foo"}, value.TopReference(), value.Int(), true},
		{"CHECKCAST overrides", &insn.TypeInsn{Opcode: opcode.Checkcast, Desc: "Foo"}, value.Reference("LBar;"), value.Reference("LFoo;"), true},
	}

	in := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := in.UnaryOperation(tt.in, tt.arg)
			if err != nil {
				t.Fatalf("UnaryOperation() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("UnaryOperation() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("UnaryOperation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnaryOperation_InvalidArrayType(t *testing.T) {
	in := New()
	for _, code := range []int{0, 3, 12, -1} {
		_, _, err := in.UnaryOperation(&insn.IntOperand{Opcode: opcode.Newarray, Operand: code}, value.Int())
		var iae *InvalidArrayTypeError
		if !errors.As(err, &iae) || iae.Code != code {
			t.Errorf("code %d: error = %v, want *InvalidArrayTypeError", code, err)
		}
		if !errors.Is(err, ErrIllegalOperand) {
			t.Errorf("code %d: error should match ErrIllegalOperand", code)
		}
	}
}

func TestUnaryOperation_Internal(t *testing.T) {
	in := New()
	for _, op := range []opcode.Op{opcode.Iadd, opcode.AconstNull, opcode.Iastore} {
		t.Run(op.String(), func(t *testing.T) {
			expectInternalError(t, func() { _, _, _ = in.UnaryOperation(simple(op), value.Int()) })
		})
	}
}

func TestBinaryOperation(t *testing.T) {
	tests := []struct {
		op     opcode.Op
		v1, v2 value.Value
		want   value.Value
		wantOK bool
	}{
		{opcode.Iadd, value.Int(), value.Int(), value.Int(), true},
		{opcode.Ishl, value.Int(), value.Int(), value.Int(), true},
		{opcode.Baload, value.Reference("[B"), value.Int(), value.Int(), true},
		{opcode.Caload, value.Reference("[C"), value.Int(), value.Int(), true},
		{opcode.Fmul, value.Float(), value.Float(), value.Float(), true},
		{opcode.Faload, value.Reference("[F"), value.Int(), value.Float(), true},
		{opcode.Lshl, value.Long(), value.Int(), value.Long(), true},
		{opcode.Lxor, value.Long(), value.Long(), value.Long(), true},
		{opcode.Drem, value.Double(), value.Double(), value.Double(), true},
		{opcode.Daload, value.Reference("[D"), value.Int(), value.Double(), true},
		{opcode.Aaload, value.Reference("[Ljava/lang/String;"), value.Int(), value.TopReference(), true},
		{opcode.Lcmp, value.Long(), value.Long(), value.Int(), true},
		{opcode.Dcmpg, value.Double(), value.Double(), value.Int(), true},
		{opcode.IfAcmpne, value.Null(), value.Null(), value.Value{}, false},
	}

	in := New()
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, ok, err := in.BinaryOperation(simple(tt.op), tt.v1, tt.v2)
			if err != nil {
				t.Fatalf("BinaryOperation() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("BinaryOperation() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("BinaryOperation() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("PUTFIELD", func(t *testing.T) {
		f := &insn.Field{Opcode: opcode.Putfield, Owner: "A", Name: "x", Desc: "I"}
		if _, ok, _ := in.BinaryOperation(f, value.Reference("LA;"), value.Int()); ok {
			t.Error("PUTFIELD should produce no value")
		}
	})

	t.Run("internal", func(t *testing.T) {
		expectInternalError(t, func() { _, _, _ = in.BinaryOperation(simple(opcode.Ineg), value.Int(), value.Int()) })
	})
}

func TestTernaryOperation(t *testing.T) {
	in := New()
	if _, ok, err := in.TernaryOperation(simple(opcode.Aastore), value.TopReference(), value.Int(), value.Null()); ok || err != nil {
		t.Errorf("AASTORE = ok %v, err %v", ok, err)
	}
	expectInternalError(t, func() { _, _, _ = in.TernaryOperation(simple(opcode.Iadd), value.Int(), value.Int(), value.Int()) })
}

func TestNaryOperation(t *testing.T) {
	tests := []struct {
		name   string
		in     insn.Instruction
		want   value.Value
		wantOK bool
	}{
		{"void call", &insn.MethodCall{Opcode: opcode.Invokestatic, Owner: "A", Name: "f", Desc: "(I)V"}, value.Value{}, false},
		{"int call", &insn.MethodCall{Opcode: opcode.Invokevirtual, Owner: "A", Name: "f", Desc: "()I"}, value.Int(), true},
		{"object call", &insn.MethodCall{Opcode: opcode.Invokeinterface, Owner: "A", Name: "f", Desc: "(J)Ljava/util/List;", Interface: true}, value.Reference("Ljava/util/List;"), true},
		{"indy", &insn.InvokeDynamic{Name: "run", Desc: "()Ljava/lang/Runnable;"}, value.Reference("Ljava/lang/Runnable;"), true},
		{"multianewarray", &insn.MultiANewArray{Desc: "[[I", Dims: 2}, value.Reference("[[I"), true},
	}

	in := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := in.NaryOperation(tt.in, nil)
			if err != nil {
				t.Fatalf("NaryOperation() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("NaryOperation() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("NaryOperation() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("bad descriptor", func(t *testing.T) {
		_, _, err := in.NaryOperation(&insn.MethodCall{Opcode: opcode.Invokestatic, Owner: "A", Name: "f", Desc: "I"}, nil)
		if !errors.Is(err, ErrIllegalOperand) {
			t.Errorf("error = %v, want ErrIllegalOperand", err)
		}
	})

	t.Run("dimension count", func(t *testing.T) {
		for _, m := range []*insn.MultiANewArray{
			{Desc: "[I", Dims: 3},
			{Desc: "[[Ljava/lang/String;", Dims: 3},
			{Desc: "[[I", Dims: 0},
		} {
			_, _, err := in.NaryOperation(m, nil)
			var oe *OperandError
			if !errors.As(err, &oe) || !errors.Is(err, ErrIllegalOperand) {
				t.Errorf("NaryOperation(%v) error = %v, want *OperandError", m, err)
			}
		}
		if _, ok, err := in.NaryOperation(&insn.MultiANewArray{Desc: "[[[I", Dims: 2}, nil); !ok || err != nil {
			t.Errorf("NaryOperation([[[I 2) = ok %v, err %v", ok, err)
		}
	})
}

func TestExtras(t *testing.T) {
	in := New()

	if got := in.CopyOperation(&insn.Var{Opcode: opcode.Aload, Index: 0}, value.Reference("LA;")); got != value.Reference("LA;") {
		t.Errorf("CopyOperation() = %v", got)
	}
	expectInternalError(t, func() { in.CopyOperation(simple(opcode.Iadd), value.Int()) })

	if got := in.NewEmptyValue(); !got.IsUninitialized() {
		t.Errorf("NewEmptyValue() = %v", got)
	}
	if got := in.NewParameterValue(descriptor.Long); got != value.Long() {
		t.Errorf("NewParameterValue(J) = %v", got)
	}
	if _, ok := in.NewReturnTypeValue(descriptor.Void); ok {
		t.Error("NewReturnTypeValue(V) should be absent")
	}
	if err := in.ReturnOperation(simple(opcode.Ireturn), value.Int(), value.Int()); err != nil {
		t.Errorf("ReturnOperation() error = %v", err)
	}

	got, err := in.NewExceptionValue("")
	if err != nil || got != value.Reference(ThrowableDescriptor) {
		t.Errorf("NewExceptionValue(\"\") = %v, %v", got, err)
	}
	got, err = in.NewExceptionValue("java/io/IOException")
	if err != nil || got != value.Reference("Ljava/io/IOException;") {
		t.Errorf("NewExceptionValue(IOException) = %v, %v", got, err)
	}
	if _, err := in.NewExceptionValue("bad;name"); !errors.Is(err, ErrIllegalOperand) {
		t.Errorf("NewExceptionValue(bad) error = %v", err)
	}
}

func TestDeterminism(t *testing.T) {
	a, b := New(), New()
	instrs := []insn.Instruction{
		simple(opcode.AconstNull),
		&insn.Ldc{Value: insn.String("x")},
		&insn.TypeInsn{Opcode: opcode.New, Desc: "A"},
		&insn.TypeInsn{Opcode: opcode.Checkcast, Desc: "B"},
	}
	for _, in := range instrs {
		var x, y value.Value
		if in.Op().Dispatch() == opcode.DispatchNew {
			x, _ = a.NewOperation(in)
			y, _ = b.NewOperation(in)
		} else {
			x, _, _ = a.UnaryOperation(in, value.TopReference())
			y, _, _ = b.UnaryOperation(in, value.TopReference())
		}
		if x != y {
			t.Errorf("%v: %v != %v", in, x, y)
		}
	}
}
