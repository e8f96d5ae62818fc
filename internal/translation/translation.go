// Package translation converts Godot optimized translation resources between
// their binary form and an ordered message table. Messages live in a
// hash-table / bucket-table index over a single compressed strings blob; any
// value edit changes payload lengths, so writing always rebuilds the whole
// blob and every offset in one pass.
package translation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/snowyegret23/godot-translation-file-tool/internal/resource"
	"github.com/snowyegret23/godot-translation-file-tool/internal/smaz"
)

// ErrEncoding reports a replacement value the codec cannot represent.
var ErrEncoding = errors.New("translation: cannot encode value")

// translationClasses are the resource class names this tool understands.
var translationClasses = map[string]bool{
	"PHashTranslation":     true,
	"OptimizedTranslation": true,
	"Translation":          true,
}

// File is a parsed translation resource: the container plus the decoded
// message table.
type File struct {
	res         *resource.Resource
	hashTable   []int32
	bucketTable []int32
	blob        []byte
	table       *Table
}

// Parse decodes a complete translation resource buffer into a File.
func Parse(data []byte) (*File, error) {
	res, err := resource.Parse(data)
	if err != nil {
		return nil, err
	}
	if !translationClasses[res.MainClassName] {
		return nil, fmt.Errorf("%w: %q is not a translation resource", resource.ErrUnsupportedFormat, res.MainClassName)
	}

	f := &File{res: res}
	if f.hashTable, err = int32Property(res, "hash_table"); err != nil {
		return nil, err
	}
	if f.bucketTable, err = int32Property(res, "bucket_table"); err != nil {
		return nil, err
	}
	rawBlob, ok := res.Property("strings")
	blob, isBytes := rawBlob.([]byte)
	if !ok || !isBytes {
		return nil, fmt.Errorf("%w: missing or mistyped strings property", resource.ErrUnsupportedFormat)
	}
	f.blob = blob

	locale := "en"
	if v, ok := res.Property("locale"); ok {
		if s, isString := v.(string); isString {
			locale = s
		}
	}

	if err := f.buildTable(locale); err != nil {
		return nil, err
	}

	log.Debug().
		Int("messages", f.table.Len()).
		Str("locale", locale).
		Str("class", res.MainClassName).
		Msg("Parsed translation resource")
	return f, nil
}

func int32Property(res *resource.Resource, name string) ([]int32, error) {
	v, ok := res.Property(name)
	arr, isArr := v.([]int32)
	if !ok || !isArr {
		return nil, fmt.Errorf("%w: missing or mistyped %s property", resource.ErrUnsupportedFormat, name)
	}
	return arr, nil
}

// buildTable walks the hash table and bucket table in index order, decoding
// each element's payload out of the strings blob.
func (f *File) buildTable(locale string) error {
	f.table = newTable(locale)
	bt := f.bucketTable

	position := 0
	for pos, bucketIdx := range f.hashTable {
		if bucketIdx == -1 {
			continue
		}
		if bucketIdx < 0 || int(bucketIdx)+2 > len(bt) {
			return fmt.Errorf("%w: hash slot %d points at bucket offset %d outside %d-entry bucket table",
				resource.ErrCorruptStream, pos, bucketIdx, len(bt))
		}
		size := int(bt[bucketIdx])
		if size < 0 || int(bucketIdx)+2+4*size > len(bt) {
			return fmt.Errorf("%w: bucket at offset %d declares %d elements beyond the bucket table",
				resource.ErrCorruptStream, bucketIdx, size)
		}

		for i := 0; i < size; i++ {
			elemBase := int(bucketIdx) + 2 + 4*i
			e := &Entry{
				Key:        fmt.Sprintf("%d:%d", pos, uint32(bt[elemBase])),
				compSize:   bt[elemBase+2],
				uncompSize: bt[elemBase+3],
				elemBase:   elemBase,
			}

			offset := bt[elemBase+1]
			value, raw, err := decodeMessage(f.blob, offset, e.compSize, e.uncompSize)
			if err != nil {
				return fmt.Errorf("entry %d (key %s): %w", position, e.Key, err)
			}
			e.Value = value
			e.raw = raw

			if err := f.table.add(e); err != nil {
				return fmt.Errorf("%w: entry %d: %v", resource.ErrCorruptStream, position, err)
			}
			position++
		}
	}
	return nil
}

// decodeMessage slices one payload out of the blob and expands it. Equal
// compressed and uncompressed sizes mark an uncompressed payload.
func decodeMessage(blob []byte, offset, compSize, uncompSize int32) (string, []byte, error) {
	if offset < 0 || compSize < 0 || int(offset)+int(compSize) > len(blob) {
		return "", nil, fmt.Errorf("%w: payload [%d:+%d] outside %d-byte strings blob",
			resource.ErrCorruptStream, offset, compSize, len(blob))
	}
	raw := blob[offset : offset+compSize]

	if compSize == uncompSize {
		return string(bytes.TrimRight(raw, "\x00")), raw, nil
	}

	plain, err := smaz.Decompress(raw)
	if err != nil {
		return "", nil, err
	}
	if len(plain) != int(uncompSize) {
		return "", nil, fmt.Errorf("%w: decompressed to %d bytes, header declares %d",
			smaz.ErrCorruptStream, len(plain), uncompSize)
	}
	return string(bytes.TrimRight(plain, "\x00")), raw, nil
}

// Table returns the decoded message table.
func (f *File) Table() *Table {
	return f.table
}

// Locale returns the resource's locale tag.
func (f *File) Locale() string {
	return f.table.Locale
}

// SetLocale stamps a new locale tag onto the resource.
func (f *File) SetLocale(tag string) {
	f.table.Locale = tag
}

// Encode rebuilds the complete container from the current table. Every
// modified value is re-encoded through the codec; untouched entries reuse
// their original payload bytes. The bucket table and strings blob are
// rewritten as a whole, so every offset stays consistent with its payload.
// Either a full buffer is returned or nothing is.
func (f *File) Encode() ([]byte, error) {
	newBucket := make([]int32, len(f.bucketTable))
	copy(newBucket, f.bucketTable)

	var blob []byte
	for i, e := range f.table.entries {
		payload, compSize, uncompSize, err := encodeMessage(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d (key %s): %w", i, e.Key, err)
		}
		offset := len(blob)
		if offset+len(payload) > 1<<31-1 {
			return nil, fmt.Errorf("%w: strings blob exceeds 2 GiB", ErrEncoding)
		}
		blob = append(blob, payload...)

		newBucket[e.elemBase+1] = int32(offset)
		newBucket[e.elemBase+2] = compSize
		newBucket[e.elemBase+3] = uncompSize
	}

	f.res.SetProperty("locale", f.table.Locale)
	f.res.SetProperty("bucket_table", newBucket)
	f.res.SetProperty("strings", blob)

	out, err := f.res.Save()
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("messages", f.table.Len()).
		Int("blob_bytes", len(blob)).
		Msg("Rebuilt translation resource")
	return out, nil
}

// encodeMessage produces the payload for one entry: the smaz form when it is
// strictly shorter than the NUL-terminated plain form, otherwise the plain
// form, which the engine recognizes by its equal sizes.
func encodeMessage(e *Entry) (payload []byte, compSize, uncompSize int32, err error) {
	if !e.modified && e.raw != nil {
		return e.raw, e.compSize, e.uncompSize, nil
	}
	if strings.ContainsRune(e.Value, 0) {
		return nil, 0, 0, fmt.Errorf("%w: NUL byte in message text", ErrEncoding)
	}

	plain := append([]byte(e.Value), 0)
	comp := smaz.Compress(plain)
	if len(comp) < len(plain) {
		return comp, int32(len(comp)), int32(len(plain)), nil
	}
	return plain, int32(len(plain)), int32(len(plain)), nil
}
