// Package asm catalogs the tapscript-like opcode alphabet that the Arkade
// Script code generator emits, and provides the virtual-stack bookkeeping
// and post-generation validation built on top of it.
//
// The compiler never assembles these tokens into bytecode (spec Non-goal:
// textual assembly only); this package plays the role the teacher's
// pkg/asm two-pass assembler played for its CPU target, but for a target
// with no addresses or labels, "assembling" collapses into "validating".
package asm

// Opcode name constants, grounded in the literal token vocabulary of the
// reference Arkade Script implementation's opcode table.
const (
	Op0  = "OP_0"
	Op1  = "OP_1"
	Op2  = "OP_2"
	Op3  = "OP_3"
	Op4  = "OP_4"
	Op5  = "OP_5"
	Op6  = "OP_6"
	Op7  = "OP_7"
	Op8  = "OP_8"
	Op9  = "OP_9"
	Op10 = "OP_10"
	Op11 = "OP_11"
	Op12 = "OP_12"
	Op13 = "OP_13"
	Op14 = "OP_14"
	Op15 = "OP_15"
	Op16 = "OP_16"

	Op1Negate = "OP_1NEGATE"

	OpCheckLockTimeVerify = "OP_CHECKLOCKTIMEVERIFY"
	OpCheckSequenceVerify = "OP_CHECKSEQUENCEVERIFY"

	OpCheckMultisig           = "OP_CHECKMULTISIG"
	OpCheckSig                = "OP_CHECKSIG"
	OpCheckSigVerify          = "OP_CHECKSIGVERIFY"
	OpCheckSigFromStack       = "OP_CHECKSIGFROMSTACK"
	OpCheckSigFromStackVerify = "OP_CHECKSIGFROMSTACKVERIFY"

	OpEqual               = "OP_EQUAL"
	OpGreaterThanOrEqual  = "OP_GREATERTHANOREQUAL"
	OpGreaterThanOrEqual64 = "OP_GREATERTHANOREQUAL64"
	OpLessThanOrEqual     = "OP_LESSTHANOREQUAL"
	OpLessThanOrEqual64   = "OP_LESSTHANOREQUAL64"
	OpGreaterThan         = "OP_GREATERTHAN"
	OpGreaterThan64       = "OP_GREATERTHAN64"
	OpLessThan            = "OP_LESSTHAN"
	OpLessThan64          = "OP_LESSTHAN64"

	OpSha256           = "OP_SHA256"
	OpSha256Update     = "OP_SHA256UPDATE"
	OpSha256Initialize = "OP_SHA256INITIALIZE"
	OpSha256Finalize   = "OP_SHA256FINALIZE"

	OpDrop  = "OP_DROP"
	OpDup   = "OP_DUP"
	Op2Drop = "OP_2DROP"
	Op2Dup  = "OP_2DUP"
	OpNip   = "OP_NIP"
	OpSwap  = "OP_SWAP"
	OpPick  = "OP_PICK"
	OpRoll  = "OP_ROLL"
	OpCat   = "OP_CAT"

	OpBoolAnd = "OP_BOOLAND"
	OpBoolOr  = "OP_BOOLOR"

	OpLe64ToScriptNum = "OP_LE64TOSCRIPTNUM"
	OpScriptNumToLe64 = "OP_SCRIPTNUMTOLE64"
	OpLe32ToLe64      = "OP_LE32TOLE64"

	OpEcMulScalarVerify = "OP_ECMULSCALARVERIFY"
	OpTweakVerify       = "OP_TWEAKVERIFY"

	OpNot   = "OP_NOT"
	OpFalse = "OP_FALSE"
	OpIf    = "OP_IF"
	OpElse  = "OP_ELSE"
	OpEndIf = "OP_ENDIF"

	OpVerify = "OP_VERIFY"
	OpEqualVerify = "OP_EQUALVERIFY"

	OpAdd64 = "OP_ADD64"
	OpSub64 = "OP_SUB64"
	OpMul64 = "OP_MUL64"
	OpDiv64 = "OP_DIV64"
	OpNeg64 = "OP_NEG64"

	OpInspectAssetGroup              = "OP_INSPECTASSETGROUP"
	OpInspectAssetGroupNum           = "OP_INSPECTASSETGROUPNUM"
	OpInspectAssetGroupSum           = "OP_INSPECTASSETGROUPSUM"
	OpInspectNumAssetGroups          = "OP_INSPECTNUMASSETGROUPS"
	OpFindAssetGroupByAssetId        = "OP_FINDASSETGROUPBYASSETID"
	OpInspectAssetGroupCtrl          = "OP_INSPECTASSETGROUPCTRL"
	OpInspectAssetGroupMetadataHash  = "OP_INSPECTASSETGROUPMETADATAHASH"
	OpInspectAssetGroupAssetId       = "OP_INSPECTASSETGROUPASSETID"
	OpPushCurrentInputIndex          = "OP_PUSHCURRENTINPUTINDEX"
	OpInspectInputScriptPubKey       = "OP_INSPECTINPUTSCRIPTPUBKEY"
	OpInspectInputValue              = "OP_INSPECTINPUTVALUE"
	OpInspectInputSequence           = "OP_INSPECTINPUTSEQUENCE"
	OpInspectInputOutpoint           = "OP_INSPECTINPUTOUTPOINT"
	OpInspectInAssetLookup           = "OP_INSPECTINASSETLOOKUP"
	OpInspectOutAssetLookup          = "OP_INSPECTOUTASSETLOOKUP"
	OpInspectInAssetCount            = "OP_INSPECTINASSETCOUNT"
	OpInspectOutAssetCount           = "OP_INSPECTOUTASSETCOUNT"
	OpInspectInAssetAt               = "OP_INSPECTINASSETAT"
	OpInspectOutAssetAt              = "OP_INSPECTOUTASSETAT"
	OpInspectVersion                 = "OP_INSPECTVERSION"
	OpInspectLockTime                = "OP_INSPECTLOCKTIME"
	OpInspectNumInputs               = "OP_INSPECTNUMINPUTS"
	OpInspectNumOutputs              = "OP_INSPECTNUMOUTPUTS"
	OpInspectOutputValue             = "OP_INSPECTOUTPUTVALUE"
	OpInspectOutputScriptPubKey      = "OP_INSPECTOUTPUTSCRIPTPUBKEY"
)

// Effect describes the fixed stack effect of an opcode: how many items it
// pops from the top of the stack, and how many it pushes back.
type Effect struct {
	Pops   int
	Pushes int
}

// Catalog lists the fixed-arity opcodes the code generator emits, along
// with their stack effect. Opcodes with a variable arity that depends on a
// preceding count push (OP_CHECKMULTISIG) or that are pure control flow
// (OP_IF/OP_ELSE/OP_ENDIF) are validated separately by Validate.
var Catalog = map[string]Effect{
	OpCheckLockTimeVerify: {Pops: 1, Pushes: 1}, // consumes top, re-pushes it (verify semantics)
	OpCheckSequenceVerify: {Pops: 1, Pushes: 1},

	OpCheckSig:          {Pops: 2, Pushes: 1},
	OpCheckSigVerify:    {Pops: 2, Pushes: 0},
	OpCheckSigFromStack: {Pops: 3, Pushes: 1},

	OpEqual:                {Pops: 2, Pushes: 1},
	OpGreaterThanOrEqual:   {Pops: 2, Pushes: 1},
	OpGreaterThanOrEqual64: {Pops: 2, Pushes: 1},
	OpLessThanOrEqual:      {Pops: 2, Pushes: 1},
	OpLessThanOrEqual64:    {Pops: 2, Pushes: 1},
	OpGreaterThan:          {Pops: 2, Pushes: 1},
	OpGreaterThan64:        {Pops: 2, Pushes: 1},
	OpLessThan:             {Pops: 2, Pushes: 1},
	OpLessThan64:           {Pops: 2, Pushes: 1},

	OpSha256:           {Pops: 1, Pushes: 1},
	OpSha256Initialize: {Pops: 1, Pushes: 1},
	OpSha256Update:     {Pops: 2, Pushes: 1},
	OpSha256Finalize:   {Pops: 2, Pushes: 1},

	OpDrop:  {Pops: 1, Pushes: 0},
	OpDup:   {Pops: 1, Pushes: 2},
	Op2Drop: {Pops: 2, Pushes: 0},
	Op2Dup:  {Pops: 2, Pushes: 4},
	OpNip:   {Pops: 2, Pushes: 1},
	OpSwap:  {Pops: 2, Pushes: 2},

	OpLe64ToScriptNum: {Pops: 1, Pushes: 1},
	OpScriptNumToLe64: {Pops: 1, Pushes: 1},
	OpLe32ToLe64:      {Pops: 1, Pushes: 1},

	OpPick: {Pops: 1, Pushes: 1}, // pops the depth operand, pushes one new copy on top
	OpRoll: {Pops: 1, Pushes: 0}, // pops the depth operand; the relocated item was already counted
	OpCat:  {Pops: 2, Pushes: 1},

	OpBoolAnd: {Pops: 2, Pushes: 1},
	OpBoolOr:  {Pops: 2, Pushes: 1},

	OpNot:    {Pops: 1, Pushes: 1},
	OpVerify: {Pops: 1, Pushes: 0},
	OpEqualVerify: {Pops: 2, Pushes: 0},

	OpAdd64: {Pops: 2, Pushes: 2}, // result + overflow flag
	OpSub64: {Pops: 2, Pushes: 2},
	OpMul64: {Pops: 2, Pushes: 2},
	OpDiv64: {Pops: 2, Pushes: 2},
	OpNeg64: {Pops: 1, Pushes: 1},

	OpInspectInputValue:         {Pops: 1, Pushes: 1},
	OpInspectInputScriptPubKey:  {Pops: 1, Pushes: 1},
	OpInspectInAssetLookup:      {Pops: 3, Pushes: 1},
	OpInspectOutAssetLookup:     {Pops: 3, Pushes: 1},
	OpInspectInAssetCount:       {Pops: 1, Pushes: 1},
	OpInspectOutAssetCount:      {Pops: 1, Pushes: 1},
	OpInspectOutputValue:        {Pops: 1, Pushes: 1},
	OpInspectOutputScriptPubKey: {Pops: 1, Pushes: 1},
	OpInspectVersion:            {Pops: 0, Pushes: 1},
	OpInspectLockTime:           {Pops: 0, Pushes: 1},
	OpInspectNumInputs:          {Pops: 0, Pushes: 1},
	OpInspectNumOutputs:         {Pops: 0, Pushes: 1},
	OpPushCurrentInputIndex:     {Pops: 0, Pushes: 1},
	OpFindAssetGroupByAssetId:   {Pops: 2, Pushes: 1},
	OpInspectNumAssetGroups:     {Pops: 0, Pushes: 1},
	OpInspectAssetGroupAssetId:  {Pops: 1, Pushes: 1},
	OpInspectAssetGroupCtrl:     {Pops: 1, Pushes: 1},
	OpInspectAssetGroupMetadataHash: {Pops: 1, Pushes: 1},
	OpInspectAssetGroupNum:      {Pops: 2, Pushes: 1},
	OpInspectAssetGroupSum:      {Pops: 2, Pushes: 1},

	OpEcMulScalarVerify: {Pops: 3, Pushes: 0},
	OpTweakVerify:       {Pops: 3, Pushes: 0},
}

// Overflow64Ops are the 64-bit arithmetic opcodes that push a result and an
// overflow flag; codegen must immediately verify the flag before anything
// else can consume it.
var Overflow64Ops = map[string]bool{
	OpAdd64: true,
	OpSub64: true,
	OpMul64: true,
	OpDiv64: true,
}

// SentinelLookupOps produce a value that may be the not-found sentinel
// (-1) and therefore require a guard before flowing into arithmetic.
var SentinelLookupOps = map[string]bool{
	OpInspectInAssetLookup:     true,
	OpInspectOutAssetLookup:    true,
	OpFindAssetGroupByAssetId:  true,
}

// PushOpcodeForSmall returns the canonical small-integer push opcode for
// -1 (OP_1NEGATE) and for values in [0, 16], and ("", false) for any other
// value (callers fall back to a bare decimal/hex literal push).
func PushOpcodeForSmall(v int64) (string, bool) {
	if v == -1 {
		return Op1Negate, true
	}
	if v < 0 || v > 16 {
		return "", false
	}
	names := [...]string{Op0, Op1, Op2, Op3, Op4, Op5, Op6, Op7, Op8, Op9, Op10, Op11, Op12, Op13, Op14, Op15, Op16}
	return names[v], true
}
