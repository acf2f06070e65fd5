// Package textprint renders values as human-readable text.
package textprint

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
)

// errWriter retains the first error of the underlying writer, and discards
// all writes after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) Write(b []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(b)
	w.err = err
	return n, err
}

func (w *errWriter) WriteString(s string) {
	_, _ = io.WriteString(w, s)
}

type encodeFunc func(*errWriter, reflect.Value)

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

func encodeFuncOf(t reflect.Type) encodeFunc {
	if t.Implements(stringerType) {
		return func(w *errWriter, v reflect.Value) {
			w.WriteString(v.Interface().(fmt.Stringer).String())
		}
	}
	switch t.Kind() {
	case reflect.Bool:
		return func(w *errWriter, v reflect.Value) {
			w.WriteString(strconv.FormatBool(v.Bool()))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(w *errWriter, v reflect.Value) {
			w.WriteString(strconv.FormatInt(v.Int(), 10))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(w *errWriter, v reflect.Value) {
			w.WriteString(strconv.FormatUint(v.Uint(), 10))
		}
	case reflect.String:
		return func(w *errWriter, v reflect.Value) {
			w.WriteString(v.String())
		}
	case reflect.Pointer:
		encode := encodeFuncOf(t.Elem())
		return func(w *errWriter, v reflect.Value) {
			if v.IsNil() {
				w.WriteString("(none)")
			} else {
				encode(w, v.Elem())
			}
		}
	default:
		panic("cannot encode values of type " + t.String())
	}
}

func encodeFuncOfStructField(t reflect.Type, index []int) encodeFunc {
	encode := encodeFuncOf(t)
	return func(w *errWriter, v reflect.Value) {
		encode(w, v.FieldByIndex(index))
	}
}
