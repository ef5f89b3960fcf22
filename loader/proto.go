package loader

import (
	"path/filepath"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/signature"
	"github.com/wippyai/contract/spec"
)

// LoadProto parses .proto files and turns every service into a contract.
//
// Each unary rpc becomes a method taking a pointer to the request message
// and returning a fallible pointer to the response message. Streaming rpcs
// are skipped. Message types are registered in the Set under their fully
// qualified names.
func (l *Loader) LoadProto(files ...string) (*Set, error) {
	importPaths := l.importPaths
	names := files
	if len(importPaths) == 0 {
		importPaths = make([]string, 0, len(files))
		names = make([]string, len(files))
		seenDir := make(map[string]bool)
		for i, f := range files {
			dir := filepath.Dir(f)
			if !seenDir[dir] {
				seenDir[dir] = true
				importPaths = append(importPaths, dir)
			}
			names[i] = filepath.Base(f)
		}
	}

	parser := protoparse.Parser{ImportPaths: importPaths}
	fds, err := parser.ParseFiles(names...)
	if err != nil {
		return nil, errors.Load("parse proto files", err)
	}

	c := &protoConverter{l: l, set: newSet()}
	for _, fd := range fds {
		for _, sd := range fd.GetServices() {
			s, err := c.service(sd)
			if err != nil {
				return nil, err
			}
			if err := c.set.add(s); err != nil {
				return nil, err
			}
		}
	}

	Logger().Debug("proto contracts loaded",
		zap.Strings("files", files),
		zap.Strings("contracts", c.set.Names()))
	return c.set, nil
}

type protoConverter struct {
	l   *Loader
	set *Set
}

func (c *protoConverter) service(sd *desc.ServiceDescriptor) (*spec.Spec, error) {
	var methods []spec.Method
	for _, md := range sd.GetMethods() {
		if md.IsClientStreaming() || md.IsServerStreaming() {
			Logger().Debug("skipping streaming rpc",
				zap.String("service", sd.GetFullyQualifiedName()),
				zap.String("method", md.GetName()))
			continue
		}
		in := c.messagePointer(md.GetInputType())
		out := c.messagePointer(md.GetOutputType())
		methods = append(methods, spec.M(md.GetName(),
			signature.New(descriptor.Fallible(out), in)))
	}

	s, err := spec.Define(sd.GetName(), methods)
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Path(sd.GetFullyQualifiedName()).
			Contract(sd.GetName()).
			Cause(err).
			Build()
	}
	return s, nil
}

func (c *protoConverter) messagePointer(md *desc.MessageDescriptor) descriptor.Descriptor {
	return &descriptor.Pointer{Size: descriptor.SizeSingle, Elem: c.message(md)}
}

func (c *protoConverter) message(md *desc.MessageDescriptor) descriptor.Descriptor {
	fqn := md.GetFullyQualifiedName()
	if d, ok := c.set.types[fqn]; ok {
		return d
	}

	fields := md.GetFields()
	s := &descriptor.Struct{Name: md.GetName(), Fields: make([]descriptor.Field, len(fields))}
	c.set.types[fqn] = s
	for i, fd := range fields {
		s.Fields[i] = descriptor.Field{Name: c.l.namer(fd.GetName()), Type: c.field(fd)}
	}
	return s
}

func (c *protoConverter) field(fd *desc.FieldDescriptor) descriptor.Descriptor {
	if fd.IsMap() {
		k := c.single(fd.GetMapKeyType())
		v := c.single(fd.GetMapValueType())
		return &descriptor.Opaque{Identity: "map[" + k.String() + "]" + v.String()}
	}

	d := c.single(fd)
	switch {
	case fd.IsRepeated():
		return &descriptor.Pointer{Size: descriptor.SizeSlice, Elem: d}
	case fd.IsProto3Optional():
		return &descriptor.Optional{Elem: d}
	}
	return d
}

func (c *protoConverter) single(fd *desc.FieldDescriptor) descriptor.Descriptor {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return &descriptor.Primitive{Name: "int32"}
	case descriptorpb.FieldDescriptorProto_TYPE_INT64, descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return &descriptor.Primitive{Name: "int64"}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32, descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return &descriptor.Primitive{Name: "uint32"}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64, descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return &descriptor.Primitive{Name: "uint64"}
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return &descriptor.Primitive{Name: "float32"}
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return &descriptor.Primitive{Name: "float64"}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return &descriptor.Primitive{Name: "bool"}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return &descriptor.Primitive{Name: "string"}
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return &descriptor.Pointer{Size: descriptor.SizeSlice, Elem: &descriptor.Primitive{Name: "uint8"}}
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return c.enum(fd.GetEnumType())
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return c.messagePointer(fd.GetMessageType())
	}
	return &descriptor.Opaque{Identity: fd.GetType().String()}
}

func (c *protoConverter) enum(ed *desc.EnumDescriptor) descriptor.Descriptor {
	fqn := ed.GetFullyQualifiedName()
	if d, ok := c.set.types[fqn]; ok {
		return d
	}
	values := ed.GetValues()
	e := &descriptor.Enum{Name: ed.GetName(), Variants: make([]descriptor.Variant, len(values))}
	for i, v := range values {
		e.Variants[i] = descriptor.Variant{Name: v.GetName(), Value: int64(v.GetNumber())}
	}
	c.set.types[fqn] = e
	return e
}
