package compiler

import (
	"encoding/json"
	"strconv"
	"time"
)

// abiJSON is the wire form of an ABIEntry: {name, type}.
type abiJSON struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// functionJSON is the wire form of one FunctionArtifact.
type functionJSON struct {
	Name           string    `json:"name"`
	FunctionInputs []abiJSON `json:"functionInputs"`
	ServerVariant  bool      `json:"serverVariant"`
	Require        []string  `json:"require"`
	Asm            []string  `json:"asm"`
}

// compilerJSON identifies the toolchain that produced an artifact.
type compilerJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ContractArtifact is the serialized compilation output: the field names
// and nesting mirror the constructor/function ABI shape the original
// reference implementation's models::ContractJson/AbiFunction fixed.
type ContractArtifact struct {
	ContractName      string         `json:"contractName"`
	ConstructorInputs []abiJSON      `json:"constructorInputs"`
	Functions         []functionJSON `json:"functions"`
	Source            string         `json:"source"`
	Compiler          compilerJSON   `json:"compiler"`
	UpdatedAt         string         `json:"updatedAt"`
}

// now is the clock behind updatedAt, a package variable so a deterministic
// clock can be substituted; it defaults to time.Now.
var now = time.Now

// BuildArtifact assembles a ContractArtifact from every function's compiled
// variants plus the original source text, ready for JSON serialization.
// version is the already-validated string to stamp into the "compiler"
// field (Version(), or a caller-supplied override from
// CompileForVersion/CompilePrettyForVersion).
func BuildArtifact(c *Contract, sema *Sema, source string, allVariants [][]*FunctionArtifact, version string) ContractArtifact {
	constructorInputs := make([]abiJSON, 0, len(c.Parameters))
	seeds := sema.AssetSeeds
	for _, p := range c.Parameters {
		switch {
		case p.Type.IsArray:
			for i := 0; i < p.Type.ArrayLen; i++ {
				constructorInputs = append(constructorInputs, abiJSON{
					Name: p.Name + "_" + strconv.Itoa(i),
					Type: typeName(p.Type.Base, false),
				})
			}
		case seeds[p.Name]:
			constructorInputs = append(constructorInputs,
				abiJSON{Name: p.Name + "_txid", Type: "bytes32"},
				abiJSON{Name: p.Name + "_gidx", Type: "int"},
			)
		default:
			constructorInputs = append(constructorInputs, abiJSON{Name: p.Name, Type: typeName(p.Type.Base, false)})
		}
	}

	var functions []functionJSON
	for _, variants := range allVariants {
		for _, fa := range variants {
			inputs := make([]abiJSON, len(fa.FunctionInputs))
			for i, e := range fa.FunctionInputs {
				inputs[i] = abiJSON{Name: e.Name, Type: e.Type}
			}
			functions = append(functions, functionJSON{
				Name:           fa.Name,
				FunctionInputs: inputs,
				ServerVariant:  fa.ServerVariant,
				Require:        fa.Require,
				Asm:            fa.Asm,
			})
		}
	}

	return ContractArtifact{
		ContractName:      c.Name,
		ConstructorInputs: constructorInputs,
		Functions:         functions,
		Source:            source,
		Compiler:          compilerJSON{Name: "arkascript", Version: version},
		UpdatedAt:         now().UTC().Format(time.RFC3339),
	}
}

// Marshal renders a ContractArtifact to JSON, pretty-printed when pretty is
// true (the shape cmd/arkascript's -pretty flag exposes).
func Marshal(a ContractArtifact, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(a, "", "  ")
	}
	return json.Marshal(a)
}
