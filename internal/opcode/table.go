package opcode

// =============================================================================
// Opcode Metadata
// =============================================================================

// Category classifies an opcode by what it does.
type Category int

const (
	CategoryNone Category = iota
	CategoryConstant
	CategoryLoad
	CategoryStore
	CategoryArrayLoad
	CategoryArrayStore
	CategoryStack
	CategoryArithmetic
	CategoryConversion
	CategoryComparison
	CategoryBranch
	CategorySwitch
	CategorySubroutine
	CategoryReturn
	CategoryField
	CategoryInvoke
	CategoryAllocation
	CategoryArrayLength
	CategoryThrow
	CategoryCast
	CategoryTypeTest
	CategoryMonitor
)

var categoryNames = [...]string{
	CategoryNone:        "none",
	CategoryConstant:    "constant",
	CategoryLoad:        "load",
	CategoryStore:       "store",
	CategoryArrayLoad:   "array-load",
	CategoryArrayStore:  "array-store",
	CategoryStack:       "stack",
	CategoryArithmetic:  "arithmetic",
	CategoryConversion:  "conversion",
	CategoryComparison:  "comparison",
	CategoryBranch:      "branch",
	CategorySwitch:      "switch",
	CategorySubroutine:  "subroutine",
	CategoryReturn:      "return",
	CategoryField:       "field",
	CategoryInvoke:      "invoke",
	CategoryAllocation:  "allocation",
	CategoryArrayLength: "array-length",
	CategoryThrow:       "throw",
	CategoryCast:        "cast",
	CategoryTypeTest:    "type-test",
	CategoryMonitor:     "monitor",
}

// String returns a string representation of the Category.
func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "category?"
}

// Form is the operand shape of an instruction.
type Form int

const (
	FormNone Form = iota
	FormSimple
	FormInt
	FormVar
	FormType
	FormField
	FormMethod
	FormInvokeDynamic
	FormJump
	FormLdc
	FormIinc
	FormTableSwitch
	FormLookupSwitch
	FormMultiANewArray
)

// Dispatch tells which interpreter callback computes the value an opcode
// produces, and therefore how many abstract values it consumes.
type Dispatch int

const (
	// DispatchNone: the opcode neither consumes nor produces values
	// (NOP, GOTO, RETURN, RET).
	DispatchNone Dispatch = iota
	// DispatchCopy: loads, stores and stack shuffles move values unchanged.
	DispatchCopy
	// DispatchNew: zero operands.
	DispatchNew
	// DispatchUnary: one operand.
	DispatchUnary
	// DispatchBinary: two operands.
	DispatchBinary
	// DispatchTernary: three operands (array stores).
	DispatchTernary
	// DispatchNary: a variable number of operands (invokes, MULTIANEWARRAY).
	DispatchNary
)

// Arity returns the number of operands consumed by the callback, or -1 when
// it is variable or not applicable.
func (d Dispatch) Arity() int {
	switch d {
	case DispatchNew:
		return 0
	case DispatchUnary:
		return 1
	case DispatchBinary:
		return 2
	case DispatchTernary:
		return 3
	default:
		return -1
	}
}

// Info is the metadata of an opcode.
type Info struct {
	Name     string
	Category Category
	Form     Form
	Dispatch Dispatch
}

var table = map[Op]Info{
	// Constants
	Nop:        {"NOP", CategoryNone, FormSimple, DispatchNone},
	AconstNull: {"ACONST_NULL", CategoryConstant, FormSimple, DispatchNew},
	IconstM1:   {"ICONST_M1", CategoryConstant, FormSimple, DispatchNew},
	Iconst0:    {"ICONST_0", CategoryConstant, FormSimple, DispatchNew},
	Iconst1:    {"ICONST_1", CategoryConstant, FormSimple, DispatchNew},
	Iconst2:    {"ICONST_2", CategoryConstant, FormSimple, DispatchNew},
	Iconst3:    {"ICONST_3", CategoryConstant, FormSimple, DispatchNew},
	Iconst4:    {"ICONST_4", CategoryConstant, FormSimple, DispatchNew},
	Iconst5:    {"ICONST_5", CategoryConstant, FormSimple, DispatchNew},
	Lconst0:    {"LCONST_0", CategoryConstant, FormSimple, DispatchNew},
	Lconst1:    {"LCONST_1", CategoryConstant, FormSimple, DispatchNew},
	Fconst0:    {"FCONST_0", CategoryConstant, FormSimple, DispatchNew},
	Fconst1:    {"FCONST_1", CategoryConstant, FormSimple, DispatchNew},
	Fconst2:    {"FCONST_2", CategoryConstant, FormSimple, DispatchNew},
	Dconst0:    {"DCONST_0", CategoryConstant, FormSimple, DispatchNew},
	Dconst1:    {"DCONST_1", CategoryConstant, FormSimple, DispatchNew},
	Bipush:     {"BIPUSH", CategoryConstant, FormInt, DispatchNew},
	Sipush:     {"SIPUSH", CategoryConstant, FormInt, DispatchNew},
	Ldc:        {"LDC", CategoryConstant, FormLdc, DispatchNew},

	// Locals
	Iload:  {"ILOAD", CategoryLoad, FormVar, DispatchCopy},
	Lload:  {"LLOAD", CategoryLoad, FormVar, DispatchCopy},
	Fload:  {"FLOAD", CategoryLoad, FormVar, DispatchCopy},
	Dload:  {"DLOAD", CategoryLoad, FormVar, DispatchCopy},
	Aload:  {"ALOAD", CategoryLoad, FormVar, DispatchCopy},
	Istore: {"ISTORE", CategoryStore, FormVar, DispatchCopy},
	Lstore: {"LSTORE", CategoryStore, FormVar, DispatchCopy},
	Fstore: {"FSTORE", CategoryStore, FormVar, DispatchCopy},
	Dstore: {"DSTORE", CategoryStore, FormVar, DispatchCopy},
	Astore: {"ASTORE", CategoryStore, FormVar, DispatchCopy},
	Iinc:   {"IINC", CategoryArithmetic, FormIinc, DispatchUnary},

	// Arrays
	Iaload:  {"IALOAD", CategoryArrayLoad, FormSimple, DispatchBinary},
	Laload:  {"LALOAD", CategoryArrayLoad, FormSimple, DispatchBinary},
	Faload:  {"FALOAD", CategoryArrayLoad, FormSimple, DispatchBinary},
	Daload:  {"DALOAD", CategoryArrayLoad, FormSimple, DispatchBinary},
	Aaload:  {"AALOAD", CategoryArrayLoad, FormSimple, DispatchBinary},
	Baload:  {"BALOAD", CategoryArrayLoad, FormSimple, DispatchBinary},
	Caload:  {"CALOAD", CategoryArrayLoad, FormSimple, DispatchBinary},
	Saload:  {"SALOAD", CategoryArrayLoad, FormSimple, DispatchBinary},
	Iastore: {"IASTORE", CategoryArrayStore, FormSimple, DispatchTernary},
	Lastore: {"LASTORE", CategoryArrayStore, FormSimple, DispatchTernary},
	Fastore: {"FASTORE", CategoryArrayStore, FormSimple, DispatchTernary},
	Dastore: {"DASTORE", CategoryArrayStore, FormSimple, DispatchTernary},
	Aastore: {"AASTORE", CategoryArrayStore, FormSimple, DispatchTernary},
	Bastore: {"BASTORE", CategoryArrayStore, FormSimple, DispatchTernary},
	Castore: {"CASTORE", CategoryArrayStore, FormSimple, DispatchTernary},
	Sastore: {"SASTORE", CategoryArrayStore, FormSimple, DispatchTernary},

	// Stack
	Pop:    {"POP", CategoryStack, FormSimple, DispatchCopy},
	Pop2:   {"POP2", CategoryStack, FormSimple, DispatchCopy},
	Dup:    {"DUP", CategoryStack, FormSimple, DispatchCopy},
	DupX1:  {"DUP_X1", CategoryStack, FormSimple, DispatchCopy},
	DupX2:  {"DUP_X2", CategoryStack, FormSimple, DispatchCopy},
	Dup2:   {"DUP2", CategoryStack, FormSimple, DispatchCopy},
	Dup2X1: {"DUP2_X1", CategoryStack, FormSimple, DispatchCopy},
	Dup2X2: {"DUP2_X2", CategoryStack, FormSimple, DispatchCopy},
	Swap:   {"SWAP", CategoryStack, FormSimple, DispatchCopy},

	// Arithmetic
	Iadd:  {"IADD", CategoryArithmetic, FormSimple, DispatchBinary},
	Ladd:  {"LADD", CategoryArithmetic, FormSimple, DispatchBinary},
	Fadd:  {"FADD", CategoryArithmetic, FormSimple, DispatchBinary},
	Dadd:  {"DADD", CategoryArithmetic, FormSimple, DispatchBinary},
	Isub:  {"ISUB", CategoryArithmetic, FormSimple, DispatchBinary},
	Lsub:  {"LSUB", CategoryArithmetic, FormSimple, DispatchBinary},
	Fsub:  {"FSUB", CategoryArithmetic, FormSimple, DispatchBinary},
	Dsub:  {"DSUB", CategoryArithmetic, FormSimple, DispatchBinary},
	Imul:  {"IMUL", CategoryArithmetic, FormSimple, DispatchBinary},
	Lmul:  {"LMUL", CategoryArithmetic, FormSimple, DispatchBinary},
	Fmul:  {"FMUL", CategoryArithmetic, FormSimple, DispatchBinary},
	Dmul:  {"DMUL", CategoryArithmetic, FormSimple, DispatchBinary},
	Idiv:  {"IDIV", CategoryArithmetic, FormSimple, DispatchBinary},
	Ldiv:  {"LDIV", CategoryArithmetic, FormSimple, DispatchBinary},
	Fdiv:  {"FDIV", CategoryArithmetic, FormSimple, DispatchBinary},
	Ddiv:  {"DDIV", CategoryArithmetic, FormSimple, DispatchBinary},
	Irem:  {"IREM", CategoryArithmetic, FormSimple, DispatchBinary},
	Lrem:  {"LREM", CategoryArithmetic, FormSimple, DispatchBinary},
	Frem:  {"FREM", CategoryArithmetic, FormSimple, DispatchBinary},
	Drem:  {"DREM", CategoryArithmetic, FormSimple, DispatchBinary},
	Ineg:  {"INEG", CategoryArithmetic, FormSimple, DispatchUnary},
	Lneg:  {"LNEG", CategoryArithmetic, FormSimple, DispatchUnary},
	Fneg:  {"FNEG", CategoryArithmetic, FormSimple, DispatchUnary},
	Dneg:  {"DNEG", CategoryArithmetic, FormSimple, DispatchUnary},
	Ishl:  {"ISHL", CategoryArithmetic, FormSimple, DispatchBinary},
	Lshl:  {"LSHL", CategoryArithmetic, FormSimple, DispatchBinary},
	Ishr:  {"ISHR", CategoryArithmetic, FormSimple, DispatchBinary},
	Lshr:  {"LSHR", CategoryArithmetic, FormSimple, DispatchBinary},
	Iushr: {"IUSHR", CategoryArithmetic, FormSimple, DispatchBinary},
	Lushr: {"LUSHR", CategoryArithmetic, FormSimple, DispatchBinary},
	Iand:  {"IAND", CategoryArithmetic, FormSimple, DispatchBinary},
	Land:  {"LAND", CategoryArithmetic, FormSimple, DispatchBinary},
	Ior:   {"IOR", CategoryArithmetic, FormSimple, DispatchBinary},
	Lor:   {"LOR", CategoryArithmetic, FormSimple, DispatchBinary},
	Ixor:  {"IXOR", CategoryArithmetic, FormSimple, DispatchBinary},
	Lxor:  {"LXOR", CategoryArithmetic, FormSimple, DispatchBinary},

	// Conversions
	I2l: {"I2L", CategoryConversion, FormSimple, DispatchUnary},
	I2f: {"I2F", CategoryConversion, FormSimple, DispatchUnary},
	I2d: {"I2D", CategoryConversion, FormSimple, DispatchUnary},
	L2i: {"L2I", CategoryConversion, FormSimple, DispatchUnary},
	L2f: {"L2F", CategoryConversion, FormSimple, DispatchUnary},
	L2d: {"L2D", CategoryConversion, FormSimple, DispatchUnary},
	F2i: {"F2I", CategoryConversion, FormSimple, DispatchUnary},
	F2l: {"F2L", CategoryConversion, FormSimple, DispatchUnary},
	F2d: {"F2D", CategoryConversion, FormSimple, DispatchUnary},
	D2i: {"D2I", CategoryConversion, FormSimple, DispatchUnary},
	D2l: {"D2L", CategoryConversion, FormSimple, DispatchUnary},
	D2f: {"D2F", CategoryConversion, FormSimple, DispatchUnary},
	I2b: {"I2B", CategoryConversion, FormSimple, DispatchUnary},
	I2c: {"I2C", CategoryConversion, FormSimple, DispatchUnary},
	I2s: {"I2S", CategoryConversion, FormSimple, DispatchUnary},

	// Comparisons
	Lcmp:  {"LCMP", CategoryComparison, FormSimple, DispatchBinary},
	Fcmpl: {"FCMPL", CategoryComparison, FormSimple, DispatchBinary},
	Fcmpg: {"FCMPG", CategoryComparison, FormSimple, DispatchBinary},
	Dcmpl: {"DCMPL", CategoryComparison, FormSimple, DispatchBinary},
	Dcmpg: {"DCMPG", CategoryComparison, FormSimple, DispatchBinary},

	// Branches
	Ifeq:      {"IFEQ", CategoryBranch, FormJump, DispatchUnary},
	Ifne:      {"IFNE", CategoryBranch, FormJump, DispatchUnary},
	Iflt:      {"IFLT", CategoryBranch, FormJump, DispatchUnary},
	Ifge:      {"IFGE", CategoryBranch, FormJump, DispatchUnary},
	Ifgt:      {"IFGT", CategoryBranch, FormJump, DispatchUnary},
	Ifle:      {"IFLE", CategoryBranch, FormJump, DispatchUnary},
	IfIcmpeq:  {"IF_ICMPEQ", CategoryBranch, FormJump, DispatchBinary},
	IfIcmpne:  {"IF_ICMPNE", CategoryBranch, FormJump, DispatchBinary},
	IfIcmplt:  {"IF_ICMPLT", CategoryBranch, FormJump, DispatchBinary},
	IfIcmpge:  {"IF_ICMPGE", CategoryBranch, FormJump, DispatchBinary},
	IfIcmpgt:  {"IF_ICMPGT", CategoryBranch, FormJump, DispatchBinary},
	IfIcmple:  {"IF_ICMPLE", CategoryBranch, FormJump, DispatchBinary},
	IfAcmpeq:  {"IF_ACMPEQ", CategoryBranch, FormJump, DispatchBinary},
	IfAcmpne:  {"IF_ACMPNE", CategoryBranch, FormJump, DispatchBinary},
	Goto:      {"GOTO", CategoryBranch, FormJump, DispatchNone},
	Ifnull:    {"IFNULL", CategoryBranch, FormJump, DispatchUnary},
	Ifnonnull: {"IFNONNULL", CategoryBranch, FormJump, DispatchUnary},
	Jsr:       {"JSR", CategorySubroutine, FormJump, DispatchNew},
	Ret:       {"RET", CategorySubroutine, FormVar, DispatchNone},

	Tableswitch:  {"TABLESWITCH", CategorySwitch, FormTableSwitch, DispatchUnary},
	Lookupswitch: {"LOOKUPSWITCH", CategorySwitch, FormLookupSwitch, DispatchUnary},

	// Returns
	Ireturn: {"IRETURN", CategoryReturn, FormSimple, DispatchUnary},
	Lreturn: {"LRETURN", CategoryReturn, FormSimple, DispatchUnary},
	Freturn: {"FRETURN", CategoryReturn, FormSimple, DispatchUnary},
	Dreturn: {"DRETURN", CategoryReturn, FormSimple, DispatchUnary},
	Areturn: {"ARETURN", CategoryReturn, FormSimple, DispatchUnary},
	Return:  {"RETURN", CategoryReturn, FormSimple, DispatchNone},

	// Fields
	Getstatic: {"GETSTATIC", CategoryField, FormField, DispatchNew},
	Putstatic: {"PUTSTATIC", CategoryField, FormField, DispatchUnary},
	Getfield:  {"GETFIELD", CategoryField, FormField, DispatchUnary},
	Putfield:  {"PUTFIELD", CategoryField, FormField, DispatchBinary},

	// Invocations
	Invokevirtual:   {"INVOKEVIRTUAL", CategoryInvoke, FormMethod, DispatchNary},
	Invokespecial:   {"INVOKESPECIAL", CategoryInvoke, FormMethod, DispatchNary},
	Invokestatic:    {"INVOKESTATIC", CategoryInvoke, FormMethod, DispatchNary},
	Invokeinterface: {"INVOKEINTERFACE", CategoryInvoke, FormMethod, DispatchNary},
	Invokedynamic:   {"INVOKEDYNAMIC", CategoryInvoke, FormInvokeDynamic, DispatchNary},

	// Objects
	New:            {"NEW", CategoryAllocation, FormType, DispatchNew},
	Newarray:       {"NEWARRAY", CategoryAllocation, FormInt, DispatchUnary},
	Anewarray:      {"ANEWARRAY", CategoryAllocation, FormType, DispatchUnary},
	Multianewarray: {"MULTIANEWARRAY", CategoryAllocation, FormMultiANewArray, DispatchNary},
	Arraylength:    {"ARRAYLENGTH", CategoryArrayLength, FormSimple, DispatchUnary},
	Athrow:         {"ATHROW", CategoryThrow, FormSimple, DispatchUnary},
	Checkcast:      {"CHECKCAST", CategoryCast, FormType, DispatchUnary},
	Instanceof:     {"INSTANCEOF", CategoryTypeTest, FormType, DispatchUnary},
	Monitorenter:   {"MONITORENTER", CategoryMonitor, FormSimple, DispatchUnary},
	Monitorexit:    {"MONITOREXIT", CategoryMonitor, FormSimple, DispatchUnary},
}

var byName = func() map[string]Op {
	m := make(map[string]Op, len(table))
	for op, info := range table {
		m[info.Name] = op
	}
	return m
}()
