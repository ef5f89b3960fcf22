package descriptor

import (
	"strconv"
	"strings"
)

// Descriptor is a structural description of a type's shape.
// Descriptors are immutable once built and may be cyclic.
type Descriptor interface {
	Kind() Kind
	String() string
	write(b *strings.Builder, seen map[Descriptor]bool)
}

// Primitive is a scalar type compared by name.
// Unnamed Go types use their kind name (uint32); named types use pkgpath.Name.
type Primitive struct {
	Name string
}

// Struct is a record compared field by field, by position.
type Struct struct {
	Name   string // display only
	Fields []Field
	Tuple  bool
}

// Field is one positional struct member.
type Field struct {
	Type Descriptor
	Name string
}

// Enum is a closed set of named integer values.
type Enum struct {
	Name     string // display only
	Variants []Variant
}

// Variant is one enum member.
type Variant struct {
	Name  string
	Value int64
}

// Array is a fixed-length sequence.
type Array struct {
	Elem Descriptor
	Len  int
}

// Pointer is a reference to one element, many elements, or a slice.
type Pointer struct {
	Elem     Descriptor
	Size     SizeKind
	Const    bool
	Volatile bool
}

// Optional wraps an element that may be absent.
type Optional struct {
	Elem Descriptor
}

// Opaque is compared by identity only.
type Opaque struct {
	Identity string
}

// Void is the payload of a method that produces no value.
var Void Descriptor = &Primitive{Name: "void"}

func (*Primitive) Kind() Kind { return KindPrimitive }
func (*Struct) Kind() Kind    { return KindStruct }
func (*Enum) Kind() Kind      { return KindEnum }
func (*Array) Kind() Kind     { return KindArray }
func (*Pointer) Kind() Kind   { return KindPointer }
func (*Optional) Kind() Kind  { return KindOptional }
func (*Opaque) Kind() Kind    { return KindOpaque }

func (d *Primitive) String() string { return render(d) }
func (d *Struct) String() string    { return render(d) }
func (d *Enum) String() string      { return render(d) }
func (d *Array) String() string     { return render(d) }
func (d *Pointer) String() string   { return render(d) }
func (d *Optional) String() string  { return render(d) }
func (d *Opaque) String() string    { return render(d) }

func render(d Descriptor) string {
	var b strings.Builder
	writeDescriptor(&b, d, make(map[Descriptor]bool))
	return b.String()
}

func writeDescriptor(b *strings.Builder, d Descriptor, seen map[Descriptor]bool) {
	if d == nil {
		b.WriteString("<nil>")
		return
	}
	d.write(b, seen)
}

func (d *Primitive) write(b *strings.Builder, _ map[Descriptor]bool) {
	b.WriteString(d.Name)
}

func (d *Opaque) write(b *strings.Builder, _ map[Descriptor]bool) {
	b.WriteString(d.Identity)
}

func (d *Struct) write(b *strings.Builder, seen map[Descriptor]bool) {
	if d.Name != "" {
		b.WriteString(d.Name)
		return
	}
	if seen[d] {
		b.WriteString("...")
		return
	}
	seen[d] = true
	defer delete(seen, d)

	if d.Tuple {
		b.WriteString("tuple<")
		for i, f := range d.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDescriptor(b, f.Type, seen)
		}
		b.WriteByte('>')
		return
	}

	b.WriteString("struct{")
	for i, f := range d.Fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Name)
		b.WriteByte(' ')
		writeDescriptor(b, f.Type, seen)
	}
	b.WriteByte('}')
}

func (d *Enum) write(b *strings.Builder, _ map[Descriptor]bool) {
	if d.Name != "" {
		b.WriteString(d.Name)
		return
	}
	b.WriteString("enum{")
	for i, v := range d.Variants {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.Name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatInt(v.Value, 10))
	}
	b.WriteByte('}')
}

func (d *Array) write(b *strings.Builder, seen map[Descriptor]bool) {
	b.WriteByte('[')
	b.WriteString(strconv.Itoa(d.Len))
	b.WriteByte(']')
	writeDescriptor(b, d.Elem, seen)
}

func (d *Pointer) write(b *strings.Builder, seen map[Descriptor]bool) {
	switch d.Size {
	case SizeMany:
		b.WriteString("[*]")
	case SizeSlice:
		b.WriteString("[]")
	default:
		b.WriteByte('*')
	}
	if d.Const {
		b.WriteString("const ")
	}
	if d.Volatile {
		b.WriteString("volatile ")
	}
	writeDescriptor(b, d.Elem, seen)
}

func (d *Optional) write(b *strings.Builder, seen map[Descriptor]bool) {
	b.WriteByte('?')
	writeDescriptor(b, d.Elem, seen)
}

// Tuple builds the payload descriptor for several values.
// Fields are named by position ("0", "1", ...).
func Tuple(elems ...Descriptor) *Struct {
	fields := make([]Field, len(elems))
	for i, e := range elems {
		fields[i] = Field{Name: strconv.Itoa(i), Type: e}
	}
	return &Struct{Fields: fields, Tuple: true}
}

// Payload collapses a result list into one descriptor: Void for none,
// the element for one, a tuple otherwise.
func Payload(elems []Descriptor) Descriptor {
	switch len(elems) {
	case 0:
		return Void
	case 1:
		return elems[0]
	default:
		return Tuple(elems...)
	}
}
