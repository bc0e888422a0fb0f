// Package flatstore holds the zero-copy slice-reinterpretation helpers
// shared by the prefix and phrase tries. Both index types are flattened
// into contiguous node/edge arrays and mmap'd at open; this is the same
// "view an mmap'd byte range as a typed slice without copying" trick the
// teacher analyzer uses to load its DAWG, generalized to also go the other
// direction (typed slice -> bytes) so a builder can write the same shape
// back out.
package flatstore

import (
	"reflect"
	"unsafe"
)

// BytesToSlice reinterprets b as a slice of T without copying. b must
// outlive the returned slice; in this module b is always a window into an
// mmap'd file, so the slice is valid for the lifetime of the open index.
func BytesToSlice[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var t T
	size := int(unsafe.Sizeof(t))
	header := reflect.SliceHeader{
		Data: uintptr(unsafe.Pointer(&b[0])),
		Len:  len(b) / size,
		Cap:  len(b) / size,
	}
	return *(*[]T)(unsafe.Pointer(&header))
}

// SliceToBytes reinterprets a slice of T as a byte slice without copying,
// so a builder can write a flattened node/edge array straight to an
// io.Writer.
func SliceToBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var t T
	size := int(unsafe.Sizeof(t))
	header := reflect.SliceHeader{
		Data: uintptr(unsafe.Pointer(&s[0])),
		Len:  len(s) * size,
		Cap:  len(s) * size,
	}
	return *(*[]byte)(unsafe.Pointer(&header))
}
