package bundle

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"reflect"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Digest is a content fingerprint of a bundle.
type Digest [blake2b.Size256]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Fingerprinter lets a value supply its own canonical encoding.
type Fingerprinter interface {
	Fingerprint() []byte
}

// Fingerprint digests a canonical encoding of b. Keys are sorted, so two
// bundles holding equal values under the same names share a digest whatever
// their key order. Equality is by value: maps are encoded in key order,
// pointers by their target, structs field by field. Functions, channels and
// unsafe pointers have no value and are encoded by identity.
func Fingerprint(b Bundle) Digest {
	h, _ := blake2b.New256(nil)
	e := &encoder{h: h, seen: make(map[uintptr]bool)}
	e.bundle(b)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

var (
	bundleType        = reflect.TypeOf(Bundle{})
	fingerprinterType = reflect.TypeOf((*Fingerprinter)(nil)).Elem()
)

type encoder struct {
	h    hash.Hash
	seen map[uintptr]bool
	buf  [8]byte
}

func (e *encoder) tag(t byte) { e.h.Write([]byte{t}) }

func (e *encoder) uint(u uint64) {
	binary.BigEndian.PutUint64(e.buf[:], u)
	e.h.Write(e.buf[:])
}

func (e *encoder) str(s string) {
	e.uint(uint64(len(s)))
	e.h.Write([]byte(s))
}

func (e *encoder) bundle(b Bundle) {
	keys := b.Keys()
	sort.Strings(keys)
	e.tag('B')
	e.uint(uint64(len(keys)))
	for _, k := range keys {
		e.str(k)
		e.value(reflect.ValueOf(b.vals[k]))
	}
}

func (e *encoder) value(v reflect.Value) {
	if !v.IsValid() {
		e.tag('0')
		return
	}
	t := v.Type()
	if t == bundleType && v.CanInterface() {
		e.bundle(v.Interface().(Bundle))
		return
	}
	if e.custom(v) {
		return
	}

	e.str(t.String())
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			e.tag(1)
		} else {
			e.tag(0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.uint(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.uint(v.Uint())
	case reflect.Float32, reflect.Float64:
		e.uint(math.Float64bits(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		e.uint(math.Float64bits(real(c)))
		e.uint(math.Float64bits(imag(c)))
	case reflect.String:
		e.str(v.String())
	case reflect.Slice:
		if v.IsNil() {
			e.tag('n')
			return
		}
		fallthrough
	case reflect.Array:
		e.uint(uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			e.value(v.Index(i))
		}
	case reflect.Map:
		e.mapValue(v)
	case reflect.Struct:
		e.uint(uint64(v.NumField()))
		for i := 0; i < v.NumField(); i++ {
			e.str(t.Field(i).Name)
			e.value(v.Field(i))
		}
	case reflect.Pointer:
		if v.IsNil() {
			e.tag('n')
			return
		}
		addr := v.Pointer()
		if e.seen[addr] {
			e.tag('c')
			return
		}
		e.seen[addr] = true
		e.value(v.Elem())
		delete(e.seen, addr)
	case reflect.Interface:
		e.value(v.Elem())
	default:
		// func, chan and unsafe.Pointer: identity
		e.tag('I')
		if v.IsNil() {
			e.tag('n')
			return
		}
		e.uint(uint64(v.Pointer()))
	}
}

// custom uses the value's own Fingerprint method when it has one.
func (e *encoder) custom(v reflect.Value) bool {
	t := v.Type()
	if v.Kind() == reflect.Interface || !v.CanInterface() || !t.Implements(fingerprinterType) {
		return false
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return false
	}
	e.tag('F')
	e.str(t.String())
	e.str(string(v.Interface().(Fingerprinter).Fingerprint()))
	return true
}

// mapValue encodes entries ordered by the encoding of their keys.
func (e *encoder) mapValue(v reflect.Value) {
	if v.IsNil() {
		e.tag('n')
		return
	}
	type entry struct {
		key []byte
		val reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		var kb bytes.Buffer
		sub := &encoder{h: nopHash{&kb}, seen: e.seen}
		sub.value(iter.Key())
		entries = append(entries, entry{key: kb.Bytes(), val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return bytes.Compare(entries[i].key, entries[j].key) < 0 })
	e.uint(uint64(len(entries)))
	for _, en := range entries {
		e.str(string(en.key))
		e.value(en.val)
	}
}

// nopHash adapts a buffer to hash.Hash so map keys can be encoded to bytes.
type nopHash struct{ *bytes.Buffer }

func (nopHash) Sum(b []byte) []byte { return b }
func (nopHash) Size() int           { return 0 }
func (nopHash) BlockSize() int      { return 1 }
