package ir

import "strings"

// FunctionKind tags the function variants.
type FunctionKind int

const (
	FunctionNormal FunctionKind = iota + 1
	FunctionProcedure
	FunctionAggregate
	FunctionWindow
)

func (k FunctionKind) String() string {
	switch k {
	case FunctionNormal:
		return "function"
	case FunctionProcedure:
		return "procedure"
	case FunctionAggregate:
		return "aggregate"
	case FunctionWindow:
		return "window"
	}
	return "unknown"
}

func functionKindOf(prokind byte) (FunctionKind, bool) {
	switch prokind {
	case 'f':
		return FunctionNormal, true
	case 'p':
		return FunctionProcedure, true
	case 'a':
		return FunctionAggregate, true
	case 'w':
		return FunctionWindow, true
	}
	return 0, false
}

// ArgumentMode is the direction of a function argument.
type ArgumentMode string

const (
	ArgumentIn       ArgumentMode = "IN"
	ArgumentOut      ArgumentMode = "OUT"
	ArgumentInOut    ArgumentMode = "INOUT"
	ArgumentVariadic ArgumentMode = "VARIADIC"
	ArgumentTable    ArgumentMode = "TABLE"
)

func argumentModeOf(code byte) (ArgumentMode, bool) {
	switch code {
	case 'i':
		return ArgumentIn, true
	case 'o':
		return ArgumentOut, true
	case 'b':
		return ArgumentInOut, true
	case 'v':
		return ArgumentVariadic, true
	case 't':
		return ArgumentTable, true
	}
	return "", false
}

// Volatility is the optimizer volatility class of a function.
type Volatility string

const (
	VolatilityImmutable Volatility = "IMMUTABLE"
	VolatilityStable    Volatility = "STABLE"
	VolatilityVolatile  Volatility = "VOLATILE"
)

func volatilityOf(code byte) Volatility {
	switch code {
	case 'i':
		return VolatilityImmutable
	case 's':
		return VolatilityStable
	}
	return VolatilityVolatile
}

// Argument is a function argument. Name may be empty.
type Argument struct {
	db       *DB
	typeOID  uint32
	Name     string
	Mode     ArgumentMode
	Position int
}

func argumentKey(a *Argument) string { return a.Name }

// Type returns the argument type, or nil when it was filtered out.
func (a *Argument) Type() *Type { return a.db.typesByOID[a.typeOID] }

// Function is a function, procedure, aggregate or window function.
type Function struct {
	db        *DB
	OID       uint32
	schemaOID uint32

	Name            string
	Kind            FunctionKind
	ReturnsSet      bool
	Language        string
	Volatility      Volatility
	IsStrict        bool
	SecurityDefiner bool
	Source          string
	Comment         *Comment

	returnTypeOID uint32
	arguments     *Collection[*Argument]
}

func functionKey(f *Function) string { return f.Name }

// Schema returns the owning schema.
func (f *Function) Schema() *Schema { return f.db.schemasByOID[f.schemaOID] }

// FullName implements Object.
func (f *Function) FullName() string { return qualify(f.Schema().Name, f.Name) }

// Arguments returns the arguments in declaration order, keyed by name.
func (f *Function) Arguments() *Collection[*Argument] { return f.arguments }

// ReturnType returns the return type, or nil for procedures and filtered types.
func (f *Function) ReturnType() *Type { return f.db.typesByOID[f.returnTypeOID] }

// Signature renders the input argument types, e.g. "add(integer, integer)".
func (f *Function) Signature() string {
	var args []string
	for _, a := range f.arguments.items {
		if a.Mode == ArgumentOut || a.Mode == ArgumentTable {
			continue
		}
		typeName := "unknown"
		if t := a.Type(); t != nil {
			typeName = t.SQLName
		}
		if a.Mode == ArgumentVariadic {
			typeName = "VARIADIC " + typeName
		}
		args = append(args, typeName)
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")"
}
