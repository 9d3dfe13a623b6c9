package compiler

// RepKind is a value's representation on the virtual stack, distinct from
// its surface TypeRef. The same surface type can carry different
// representations at different points (e.g. an asset lookup result is
// RepSentinel until guarded, then behaves as RepU64LE).
type RepKind int

const (
	RepCSN      RepKind = iota // minimal-encoding script number, Bitcoin arithmetic opcode operand
	RepU32LE                   // little-endian 4-byte integer, e.g. a group index
	RepU64LE                   // little-endian 8-byte integer, e.g. an asset amount
	RepBytes                   // raw byte string of unspecified fixed length
	RepPubkey                  // 32-byte x-only public key
	RepSignature                // 64-byte Schnorr signature
	RepSentinel                 // result of a lookup that may be the not-found marker (-1)
	RepBool                      // OP_IF-ready boolean (0 or 1 script number)
)

func (k RepKind) String() string {
	switch k {
	case RepCSN:
		return "csn"
	case RepU32LE:
		return "u32le"
	case RepU64LE:
		return "u64le"
	case RepBytes:
		return "bytes"
	case RepPubkey:
		return "pubkey"
	case RepSignature:
		return "signature"
	case RepSentinel:
		return "sentinel"
	case RepBool:
		return "bool"
	default:
		return "unknown"
	}
}

// baseRep returns the natural representation of a declared surface type
// when it first enters the virtual stack (as a constructor or witness
// parameter).
func baseRep(t TypeRef) RepKind {
	switch t.Base {
	case TPUBKEY:
		return RepPubkey
	case TSIGNATURE:
		return RepSignature
	case TBYTES, TBYTES20, TBYTES32:
		return RepBytes
	case TINT:
		return RepCSN
	case TBOOL:
		return RepBool
	case TASSET:
		return RepBytes // asset ids are carried as bytes32 until decomposed
	default:
		return RepBytes
	}
}

// canGuard reports whether a value of rep kind from may be used directly as
// an arithmetic operand, i.e. it is not a sentinel awaiting a guard.
func canGuard(from RepKind) bool {
	return from != RepSentinel
}

// repFromTag recovers the RepKind a virtual-stack slot was tagged with.
// Codegen always tags a slot with RepKind.String(), so this just reverses
// that; it defaults to RepBytes for the handful of internal bookkeeping
// tags (e.g. "overflow") that never flow back through genExpr.
func repFromTag(tag string) RepKind {
	for k := RepCSN; k <= RepBool; k++ {
		if k.String() == tag {
			return k
		}
	}
	return RepBytes
}

// widenSentinel returns the representation a sentinel value takes on once it has
// passed its not-found guard: asset lookups resolve to 64-bit amounts,
// group lookups resolve to 32-bit indices. The caller supplies which.
func widenSentinel(toU64 bool) RepKind {
	if toU64 {
		return RepU64LE
	}
	return RepU32LE
}
