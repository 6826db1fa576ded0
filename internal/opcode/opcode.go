// Package opcode defines the JVM instruction set as seen by the analysis.
//
// The set is the normalized one used by bytecode manipulation libraries:
// short forms (ILOAD_0, LDC_W, GOTO_W, ...) and WIDE are folded into their
// general opcode by the decoder and never appear here.
package opcode

import "fmt"

// Op is a JVM opcode. Pseudo-instructions (labels, line numbers) use None.
type Op int

// None is the opcode of pseudo-instructions that do not execute.
const None Op = -1

// Opcodes, by JVM value.
const (
	Nop             Op = 0
	AconstNull      Op = 1
	IconstM1        Op = 2
	Iconst0         Op = 3
	Iconst1         Op = 4
	Iconst2         Op = 5
	Iconst3         Op = 6
	Iconst4         Op = 7
	Iconst5         Op = 8
	Lconst0         Op = 9
	Lconst1         Op = 10
	Fconst0         Op = 11
	Fconst1         Op = 12
	Fconst2         Op = 13
	Dconst0         Op = 14
	Dconst1         Op = 15
	Bipush          Op = 16
	Sipush          Op = 17
	Ldc             Op = 18
	Iload           Op = 21
	Lload           Op = 22
	Fload           Op = 23
	Dload           Op = 24
	Aload           Op = 25
	Iaload          Op = 46
	Laload          Op = 47
	Faload          Op = 48
	Daload          Op = 49
	Aaload          Op = 50
	Baload          Op = 51
	Caload          Op = 52
	Saload          Op = 53
	Istore          Op = 54
	Lstore          Op = 55
	Fstore          Op = 56
	Dstore          Op = 57
	Astore          Op = 58
	Iastore         Op = 79
	Lastore         Op = 80
	Fastore         Op = 81
	Dastore         Op = 82
	Aastore         Op = 83
	Bastore         Op = 84
	Castore         Op = 85
	Sastore         Op = 86
	Pop             Op = 87
	Pop2            Op = 88
	Dup             Op = 89
	DupX1           Op = 90
	DupX2           Op = 91
	Dup2            Op = 92
	Dup2X1          Op = 93
	Dup2X2          Op = 94
	Swap            Op = 95
	Iadd            Op = 96
	Ladd            Op = 97
	Fadd            Op = 98
	Dadd            Op = 99
	Isub            Op = 100
	Lsub            Op = 101
	Fsub            Op = 102
	Dsub            Op = 103
	Imul            Op = 104
	Lmul            Op = 105
	Fmul            Op = 106
	Dmul            Op = 107
	Idiv            Op = 108
	Ldiv            Op = 109
	Fdiv            Op = 110
	Ddiv            Op = 111
	Irem            Op = 112
	Lrem            Op = 113
	Frem            Op = 114
	Drem            Op = 115
	Ineg            Op = 116
	Lneg            Op = 117
	Fneg            Op = 118
	Dneg            Op = 119
	Ishl            Op = 120
	Lshl            Op = 121
	Ishr            Op = 122
	Lshr            Op = 123
	Iushr           Op = 124
	Lushr           Op = 125
	Iand            Op = 126
	Land            Op = 127
	Ior             Op = 128
	Lor             Op = 129
	Ixor            Op = 130
	Lxor            Op = 131
	Iinc            Op = 132
	I2l             Op = 133
	I2f             Op = 134
	I2d             Op = 135
	L2i             Op = 136
	L2f             Op = 137
	L2d             Op = 138
	F2i             Op = 139
	F2l             Op = 140
	F2d             Op = 141
	D2i             Op = 142
	D2l             Op = 143
	D2f             Op = 144
	I2b             Op = 145
	I2c             Op = 146
	I2s             Op = 147
	Lcmp            Op = 148
	Fcmpl           Op = 149
	Fcmpg           Op = 150
	Dcmpl           Op = 151
	Dcmpg           Op = 152
	Ifeq            Op = 153
	Ifne            Op = 154
	Iflt            Op = 155
	Ifge            Op = 156
	Ifgt            Op = 157
	Ifle            Op = 158
	IfIcmpeq        Op = 159
	IfIcmpne        Op = 160
	IfIcmplt        Op = 161
	IfIcmpge        Op = 162
	IfIcmpgt        Op = 163
	IfIcmple        Op = 164
	IfAcmpeq        Op = 165
	IfAcmpne        Op = 166
	Goto            Op = 167
	Jsr             Op = 168
	Ret             Op = 169
	Tableswitch     Op = 170
	Lookupswitch    Op = 171
	Ireturn         Op = 172
	Lreturn         Op = 173
	Freturn         Op = 174
	Dreturn         Op = 175
	Areturn         Op = 176
	Return          Op = 177
	Getstatic       Op = 178
	Putstatic       Op = 179
	Getfield        Op = 180
	Putfield        Op = 181
	Invokevirtual   Op = 182
	Invokespecial   Op = 183
	Invokestatic    Op = 184
	Invokeinterface Op = 185
	Invokedynamic   Op = 186
	New             Op = 187
	Newarray        Op = 188
	Anewarray       Op = 189
	Arraylength     Op = 190
	Athrow          Op = 191
	Checkcast       Op = 192
	Instanceof      Op = 193
	Monitorenter    Op = 194
	Monitorexit     Op = 195
	Multianewarray  Op = 197
	Ifnull          Op = 198
	Ifnonnull       Op = 199
)

// Primitive array type codes, the operand of NEWARRAY.
const (
	TBoolean = 4
	TChar    = 5
	TFloat   = 6
	TDouble  = 7
	TByte    = 8
	TShort   = 9
	TInt     = 10
	TLong    = 11
)

// String returns the mnemonic of the opcode.
func (op Op) String() string {
	if op == None {
		return "<none>"
	}
	if info, ok := table[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Valid returns true if op is a known opcode.
func (op Op) Valid() bool {
	_, ok := table[op]
	return ok
}

// Info returns the metadata of op. ok is false for unknown opcodes.
func (op Op) Info() (info Info, ok bool) {
	info, ok = table[op]
	return info, ok
}

// Category returns the category of op, or CategoryNone if unknown.
func (op Op) Category() Category {
	return table[op].Category
}

// Form returns the operand form of op, or FormNone if unknown.
func (op Op) Form() Form {
	return table[op].Form
}

// Dispatch returns how the interpreter is called for op.
func (op Op) Dispatch() Dispatch {
	return table[op].Dispatch
}

// Lookup returns the opcode for a mnemonic such as "ILOAD".
func Lookup(name string) (Op, bool) {
	op, ok := byName[name]
	return op, ok
}

// All returns every known opcode in ascending order.
func All() []Op {
	ops := make([]Op, 0, len(table))
	for op := Nop; op <= Ifnonnull; op++ {
		if _, ok := table[op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// ArrayTypeName returns the T_* name of a NEWARRAY operand.
func ArrayTypeName(code int) (string, bool) {
	name, ok := arrayTypeNames[code]
	return name, ok
}

// LookupArrayType returns the NEWARRAY operand for a T_* name.
func LookupArrayType(name string) (int, bool) {
	for code, n := range arrayTypeNames {
		if n == name {
			return code, true
		}
	}
	return 0, false
}

var arrayTypeNames = map[int]string{
	TBoolean: "T_BOOLEAN",
	TChar:    "T_CHAR",
	TFloat:   "T_FLOAT",
	TDouble:  "T_DOUBLE",
	TByte:    "T_BYTE",
	TShort:   "T_SHORT",
	TInt:     "T_INT",
	TLong:    "T_LONG",
}
