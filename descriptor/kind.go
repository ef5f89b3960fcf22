package descriptor

// Kind discriminates descriptor variants.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindStruct
	KindEnum
	KindArray
	KindPointer
	KindOptional
	KindOpaque
)

var kindNames = [...]string{
	KindPrimitive: "primitive",
	KindStruct:    "struct",
	KindEnum:      "enum",
	KindArray:     "array",
	KindPointer:   "pointer",
	KindOptional:  "optional",
	KindOpaque:    "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// SizeKind distinguishes single-item, many-item and slice pointers.
type SizeKind uint8

const (
	SizeSingle SizeKind = iota
	SizeMany
	SizeSlice
)

var sizeNames = [...]string{
	SizeSingle: "single",
	SizeMany:   "many",
	SizeSlice:  "slice",
}

func (s SizeKind) String() string {
	if int(s) < len(sizeNames) {
		return sizeNames[s]
	}
	return "unknown"
}
