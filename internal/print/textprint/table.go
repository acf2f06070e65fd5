package textprint

import (
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/stealthrocket/xnet/internal/stream"
)

type TableOption[T any] func(*tableWriter[T])

func Header[T any](enable bool) TableOption[T] {
	return func(t *tableWriter[T]) { t.header = enable }
}

func OrderBy[T any](f func(T, T) bool) TableOption[T] {
	return func(t *tableWriter[T]) { t.orderBy = f }
}

// NewTableWriter returns a writer which renders values of the struct type T
// as the rows of a table, once closed. Column names are taken from the "text"
// tag of the struct fields, fields tagged with "-" are omitted.
func NewTableWriter[T any](w io.Writer, opts ...TableOption[T]) stream.WriteCloser[T] {
	t := &tableWriter[T]{
		output: w,
		header: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type tableWriter[T any] struct {
	output  io.Writer
	values  []T
	header  bool
	orderBy func(T, T) bool
}

func (t *tableWriter[T]) Write(values []T) (int, error) {
	t.values = append(t.values, values...)
	return len(values), nil
}

func (t *tableWriter[T]) Close() error {
	if t.orderBy != nil {
		sort.SliceStable(t.values, func(i, j int) bool {
			return t.orderBy(t.values[i], t.values[j])
		})
	}

	var columns []string
	var encoders []encodeFunc
	for _, f := range reflect.VisibleFields(reflect.TypeOf(new(T)).Elem()) {
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("text"); tag != "" {
			name, _, _ = strings.Cut(tag, ",")
		}
		if name == "-" {
			continue
		}
		columns = append(columns, name)
		encoders = append(encoders, encodeFuncOfStructField(f.Type, f.Index))
	}

	tw := tabwriter.NewWriter(t.output, 0, 4, 2, ' ', 0)
	w := &errWriter{w: tw}

	if t.header {
		for i, name := range columns {
			if i != 0 {
				w.WriteString("\t")
			}
			w.WriteString(name)
		}
		w.WriteString("\n")
	}

	for i := range t.values {
		v := reflect.ValueOf(&t.values[i]).Elem()
		for j, enc := range encoders {
			if j != 0 {
				w.WriteString("\t")
			}
			enc(w, v)
		}
		w.WriteString("\n")
	}

	if w.err != nil {
		return w.err
	}
	return tw.Flush()
}
