package descriptor

import (
	"errors"
	"testing"
)

func TestSort_String(t *testing.T) {
	tests := []struct {
		sort Sort
		want string
	}{
		{SortNone, "none"},
		{SortInt, "int"},
		{SortArray, "array"},
		{SortMethod, "method"},
		{Sort(99), "Sort(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.sort.String(); got != tt.want {
				t.Errorf("Sort.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		desc string
		sort Sort
	}{
		{"V", SortVoid},
		{"Z", SortBoolean},
		{"C", SortChar},
		{"B", SortByte},
		{"S", SortShort},
		{"I", SortInt},
		{"F", SortFloat},
		{"J", SortLong},
		{"D", SortDouble},
		{"Ljava/lang/String;", SortObject},
		{"[I", SortArray},
		{"[[Ljava/lang/Object;", SortArray},
		{"()V", SortMethod},
		{"(IJLjava/lang/String;[D)Ljava/lang/Object;", SortMethod},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Parse(tt.desc)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.desc, err)
			}
			if got.Sort() != tt.sort {
				t.Errorf("Parse(%q).Sort() = %v, want %v", tt.desc, got.Sort(), tt.sort)
			}
			if got.Descriptor() != tt.desc {
				t.Errorf("Parse(%q).Descriptor() = %q", tt.desc, got.Descriptor())
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	bad := []string{
		"",
		"X",
		"II",
		"Ljava/lang/String",
		"L;",
		"Ljava//String;",
		"[",
		"(I",
		"(I)",
		"(V)V",
		"(I)VV",
	}

	for _, desc := range bad {
		t.Run(desc, func(t *testing.T) {
			_, err := Parse(desc)
			var synErr *SyntaxError
			if !errors.As(err, &synErr) {
				t.Errorf("Parse(%q) error = %v, want *SyntaxError", desc, err)
			}
		})
	}
}

func TestType_Equality(t *testing.T) {
	a := MustParse("Ljava/lang/String;")
	b := MustObjectType("java/lang/String")
	if a != b {
		t.Errorf("independently built types should be equal: %v vs %v", a, b)
	}
	if MustParse("I") != Int {
		t.Error("Parse(I) should equal Int")
	}
}

func TestType_Zero(t *testing.T) {
	var zero Type
	if !zero.IsZero() {
		t.Error("zero Type should report IsZero")
	}
	if zero.String() != "<none>" {
		t.Errorf("zero.String() = %q", zero.String())
	}
	if Int.IsZero() {
		t.Error("Int should not be zero")
	}
}

func TestObjectType(t *testing.T) {
	t.Run("class", func(t *testing.T) {
		got, err := ObjectType("java/lang/String")
		if err != nil {
			t.Fatal(err)
		}
		if got.Descriptor() != "Ljava/lang/String;" {
			t.Errorf("Descriptor() = %q", got.Descriptor())
		}
		if got.InternalName() != "java/lang/String" {
			t.Errorf("InternalName() = %q", got.InternalName())
		}
	})

	t.Run("array descriptor", func(t *testing.T) {
		got, err := ObjectType("[Ljava/lang/String;")
		if err != nil {
			t.Fatal(err)
		}
		if got.Sort() != SortArray {
			t.Errorf("Sort() = %v, want array", got.Sort())
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, name := range []string{"", "a..b", "a/", "[X", "[", "a;b"} {
			if _, err := ObjectType(name); err == nil {
				t.Errorf("ObjectType(%q) should fail", name)
			}
		}
	})
}

func TestArrayOf(t *testing.T) {
	elem := MustObjectType("java/lang/String")
	arr := ArrayOf(elem)
	if arr.Descriptor() != "[Ljava/lang/String;" {
		t.Errorf("ArrayOf = %q", arr.Descriptor())
	}
	deeper := ArrayOf(arr)
	if deeper.Dimensions() != 2 {
		t.Errorf("Dimensions() = %d, want 2", deeper.Dimensions())
	}
	if deeper.ElementType() != elem {
		t.Errorf("ElementType() = %v, want %v", deeper.ElementType(), elem)
	}
	if Int.Dimensions() != 0 || Int.ElementType() != Int {
		t.Error("non-array Dimensions/ElementType mismatch")
	}
}

func TestType_Size(t *testing.T) {
	tests := []struct {
		typ  Type
		want int
	}{
		{Void, 0},
		{Type{}, 0},
		{Int, 1},
		{Boolean, 1},
		{Long, 2},
		{Double, 2},
		{MustParse("[J"), 1},
		{MustParse("Ljava/lang/Object;"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := tt.typ.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMethodType(t *testing.T) {
	m := MustParse("(IJ[Ljava/lang/String;D)Ljava/lang/Object;")

	args := m.ArgumentTypes()
	want := []string{"I", "J", "[Ljava/lang/String;", "D"}
	if len(args) != len(want) {
		t.Fatalf("ArgumentTypes() len = %d, want %d", len(args), len(want))
	}
	for i, a := range args {
		if a.Descriptor() != want[i] {
			t.Errorf("arg %d = %q, want %q", i, a.Descriptor(), want[i])
		}
	}
	if m.ReturnType().Descriptor() != "Ljava/lang/Object;" {
		t.Errorf("ReturnType() = %v", m.ReturnType())
	}
	if m.ArgumentsSize() != 6 {
		t.Errorf("ArgumentsSize() = %d, want 6", m.ArgumentsSize())
	}

	void := MustParse("()V")
	if len(void.ArgumentTypes()) != 0 || void.ReturnType() != Void {
		t.Error("()V should have no args and void return")
	}

	if Int.ArgumentTypes() != nil || !Int.ReturnType().IsZero() {
		t.Error("non-method types should have no args and zero return")
	}
}
