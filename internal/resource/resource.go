// Package resource reads and writes Godot binary resource containers (RSRC
// files). Only the variant subset that appears in translation resources is
// supported; anything else is rejected rather than skipped, because a
// misparsed variant desynchronizes every field after it.
package resource

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnsupportedFormat reports a container whose magic, layout or variant
// types this package does not understand.
var ErrUnsupportedFormat = errors.New("resource: unsupported format")

// ErrCorruptStream reports a container whose declared sizes and offsets are
// internally inconsistent with the actual buffer.
var ErrCorruptStream = errors.New("resource: corrupt stream")

const magic = "RSRC"

// Container format flags.
const (
	FlagNamedSceneIDs  = 1
	FlagUIDs           = 2
	FlagRealTIsDouble  = 4
	FlagHasScriptClass = 8

	reservedFields = 11
)

// Variant type tags used in the property table.
const (
	variantNil              = 1
	variantBool             = 2
	variantInt              = 3
	variantFloat            = 4
	variantString           = 5
	variantPackedByteArray  = 31
	variantPackedInt32Array = 32
	variantInt64            = 40
	variantDouble           = 41
)

// stringNameInline marks a property name stored inline instead of through
// the string map.
const stringNameInline = 0x80000000

// ExternalResource is a dependency reference carried in the container header.
type ExternalResource struct {
	Type string
	Path string
	UID  uint64
}

// Property is one name/value pair of the main internal resource. Values are
// one of: nil, bool, int32, int64, float32, float64, string, []byte, []int32.
type Property struct {
	Name  string
	Value any
}

// Resource is a parsed container. Header metadata is carried through
// untouched so that Save can reproduce a loader-compatible file.
type Resource struct {
	BigEndian     bool
	UseReal64     bool
	VersionMajor  int32
	VersionMinor  int32
	FormatVersion int32
	ClassName     string
	ImportOffset  int64
	Flags         uint32
	UID           uint64
	ScriptClass   string
	StringMap     []string
	External      []ExternalResource

	// MainClassName and Properties describe the main internal resource.
	MainClassName string
	Properties    []Property
}

// Property returns the value of the named property of the main resource.
func (r *Resource) Property(name string) (any, bool) {
	for _, p := range r.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// SetProperty replaces the named property's value, keeping its position.
func (r *Resource) SetProperty(name string, value any) {
	for i := range r.Properties {
		if r.Properties[i].Name == name {
			r.Properties[i].Value = value
			return
		}
	}
	r.Properties = append(r.Properties, Property{Name: name, Value: value})
}

// Parse decodes a complete container buffer. The input is not mutated.
func Parse(data []byte) (*Resource, error) {
	if len(data) < 4 || string(data[:4]) != magic {
		return nil, fmt.Errorf("%w: missing RSRC magic", ErrUnsupportedFormat)
	}

	rd := newReader(data)
	rd.skip(4) // magic

	res := &Resource{}
	res.BigEndian = rd.i32() == 1
	res.UseReal64 = rd.i32() == 1
	if res.BigEndian {
		rd.order = binary.BigEndian
	}

	res.VersionMajor = rd.i32()
	res.VersionMinor = rd.i32()
	res.FormatVersion = rd.i32()
	res.ClassName = rd.unicode()
	res.ImportOffset = rd.i64()
	res.Flags = rd.u32()

	if res.Flags&FlagUIDs != 0 {
		res.UID = rd.u64()
	} else {
		rd.skip(8)
	}
	if res.Flags&FlagHasScriptClass != 0 {
		res.ScriptClass = rd.unicode()
	}
	rd.skip(4 * reservedFields)

	stringCount := rd.u32()
	if rd.err != nil {
		return nil, rd.err
	}
	// Each entry needs at least its 4-byte length prefix.
	if int64(stringCount)*4 > int64(len(data)-rd.pos) {
		return nil, fmt.Errorf("%w: string map declares %d entries in a %d-byte remainder",
			ErrCorruptStream, stringCount, len(data)-rd.pos)
	}
	res.StringMap = make([]string, 0, stringCount)
	for i := uint32(0); i < stringCount && rd.err == nil; i++ {
		res.StringMap = append(res.StringMap, rd.unicode())
	}

	extCount := rd.u32()
	for i := uint32(0); i < extCount && rd.err == nil; i++ {
		ext := ExternalResource{Type: rd.unicode(), Path: rd.unicode()}
		if res.Flags&FlagUIDs != 0 {
			ext.UID = rd.u64()
		}
		res.External = append(res.External, ext)
	}

	intCount := rd.u32()
	type internalRef struct {
		path   string
		offset uint64
	}
	refs := make([]internalRef, 0, intCount)
	for i := uint32(0); i < intCount && rd.err == nil; i++ {
		refs = append(refs, internalRef{path: rd.unicode(), offset: rd.u64()})
	}
	if rd.err != nil {
		return nil, rd.err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: container has no internal resources", ErrCorruptStream)
	}

	// The main resource is the last internal one; earlier entries are
	// sub-resources a translation file never carries.
	main := refs[len(refs)-1]
	rd.seek(int(main.offset))
	res.MainClassName = rd.unicode()
	propCount := rd.i32()
	if rd.err != nil {
		return nil, rd.err
	}
	for i := int32(0); i < propCount && rd.err == nil; i++ {
		name, err := parseName(rd, res.StringMap)
		if err != nil {
			return nil, err
		}
		value, err := parseVariant(rd)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		res.Properties = append(res.Properties, Property{Name: name, Value: value})
	}
	if rd.err != nil {
		return nil, rd.err
	}
	return res, nil
}

func parseName(rd *reader, stringMap []string) (string, error) {
	id := rd.u32()
	if id&stringNameInline != 0 {
		n := int(id &^ stringNameInline)
		b := rd.bytes(n)
		if rd.err != nil {
			return "", rd.err
		}
		if len(b) > 0 && b[len(b)-1] == 0 {
			b = b[:len(b)-1]
		}
		return string(b), nil
	}
	if rd.err != nil {
		return "", rd.err
	}
	if int(id) >= len(stringMap) {
		return "", fmt.Errorf("%w: property name index %d outside %d-entry string map",
			ErrCorruptStream, id, len(stringMap))
	}
	return stringMap[id], nil
}

func parseVariant(rd *reader) (any, error) {
	t := rd.u32()
	if rd.err != nil {
		return nil, rd.err
	}
	switch t {
	case variantNil:
		return nil, nil
	case variantBool:
		return rd.i32() != 0, rd.err
	case variantInt:
		return rd.i32(), rd.err
	case variantInt64:
		return rd.i64(), rd.err
	case variantFloat:
		return rd.f32(), rd.err
	case variantDouble:
		return rd.f64(), rd.err
	case variantString:
		return rd.unicode(), rd.err
	case variantPackedByteArray:
		n := rd.u32()
		b := rd.bytes(int(n))
		if pad := 4 - int(n)%4; pad < 4 {
			rd.skip(pad)
		}
		if rd.err != nil {
			return nil, rd.err
		}
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	case variantPackedInt32Array:
		n := rd.u32()
		if rd.err != nil {
			return nil, rd.err
		}
		if int64(n)*4 > int64(len(rd.data)-rd.pos) {
			return nil, fmt.Errorf("%w: int32 array declares %d elements in a %d-byte remainder",
				ErrCorruptStream, n, len(rd.data)-rd.pos)
		}
		out := make([]int32, 0, n)
		for i := uint32(0); i < n && rd.err == nil; i++ {
			out = append(out, rd.i32())
		}
		return out, rd.err
	default:
		return nil, fmt.Errorf("%w: variant type %d", ErrUnsupportedFormat, t)
	}
}

// Save serializes the resource into a complete new container buffer. The
// whole file is rebuilt in one pass; nothing is patched in place.
func (r *Resource) Save() ([]byte, error) {
	w := &writer{}
	w.raw([]byte(magic))
	w.i32(0) // output is always little-endian
	boolToI32(w, r.UseReal64)

	w.i32(r.VersionMajor)
	w.i32(r.VersionMinor)
	w.i32(r.FormatVersion)
	w.unicode(r.ClassName)
	w.i64(r.ImportOffset)
	w.u32(r.Flags)
	w.u64(r.UID)
	if r.Flags&FlagHasScriptClass != 0 {
		w.unicode(r.ScriptClass)
	}
	for i := 0; i < reservedFields; i++ {
		w.i32(0)
	}

	w.u32(uint32(len(r.StringMap)))
	for _, s := range r.StringMap {
		w.unicode(s)
	}

	w.u32(uint32(len(r.External)))
	for _, ext := range r.External {
		w.unicode(ext.Type)
		w.unicode(ext.Path)
		if r.Flags&FlagUIDs != 0 {
			w.u64(ext.UID)
		}
	}

	w.u32(1)
	w.unicode("local://0")
	w.u64(uint64(w.len()) + 8) // main resource starts right after this offset field

	w.unicode(r.MainClassName)
	w.i32(int32(len(r.Properties)))
	for _, p := range r.Properties {
		storeName(w, r.StringMap, p.Name)
		if err := storeVariant(w, p.Value); err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
	}

	w.raw([]byte(magic))
	return w.buf.Bytes(), nil
}

func boolToI32(w *writer, v bool) {
	if v {
		w.i32(1)
	} else {
		w.i32(0)
	}
}

func storeName(w *writer, stringMap []string, name string) {
	for i, s := range stringMap {
		if s == name {
			w.u32(uint32(i))
			return
		}
	}
	w.u32(stringNameInline | uint32(len(name)+1))
	w.raw(append([]byte(name), 0))
}

func storeVariant(w *writer, value any) error {
	switch v := value.(type) {
	case nil:
		w.u32(variantNil)
	case bool:
		w.u32(variantBool)
		boolToI32(w, v)
	case int32:
		w.u32(variantInt)
		w.i32(v)
	case int64:
		w.u32(variantInt64)
		w.i64(v)
	case float32:
		w.u32(variantFloat)
		w.f32(v)
	case float64:
		w.u32(variantDouble)
		w.f64(v)
	case string:
		w.u32(variantString)
		w.unicode(v)
	case []byte:
		w.u32(variantPackedByteArray)
		w.u32(uint32(len(v)))
		w.raw(v)
		if pad := 4 - len(v)%4; pad < 4 {
			w.raw(make([]byte, pad))
		}
	case []int32:
		w.u32(variantPackedInt32Array)
		w.u32(uint32(len(v)))
		for _, n := range v {
			w.i32(n)
		}
	default:
		return fmt.Errorf("%w: cannot serialize %T", ErrUnsupportedFormat, value)
	}
	return nil
}
