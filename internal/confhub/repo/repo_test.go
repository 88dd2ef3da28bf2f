package repo

import (
	"context"
	"strings"

	"github.com/confhub/confhub/internal/confhub/store"
)

type queryHandler struct {
	substr string
	fn     func(args []any) ([]store.Row, error)
}

type execHandler struct {
	substr string
	fn     func(args []any) (int64, error)
}

// fakeQueryer scripts responses by SQL substring, first match wins, and
// records every write for assertions.
type fakeQueryer struct {
	queryHandlers []queryHandler
	execHandlers  []execHandler
	writes        []string
	writeArgs     [][]any
}

func (f *fakeQueryer) onQuery(substr string, fn func(args []any) ([]store.Row, error)) {
	f.queryHandlers = append(f.queryHandlers, queryHandler{substr: substr, fn: fn})
}

func (f *fakeQueryer) onExec(substr string, fn func(args []any) (int64, error)) {
	f.execHandlers = append(f.execHandlers, execHandler{substr: substr, fn: fn})
}

func (f *fakeQueryer) ExecuteQuery(_ context.Context, query string, args ...any) ([]store.Row, error) {
	for _, h := range f.queryHandlers {
		if strings.Contains(query, h.substr) {
			return h.fn(args)
		}
	}
	return nil, nil
}

func (f *fakeQueryer) ExecuteNonQuery(_ context.Context, query string, args ...any) (int64, error) {
	f.writes = append(f.writes, query)
	f.writeArgs = append(f.writeArgs, args)
	for _, h := range f.execHandlers {
		if strings.Contains(query, h.substr) {
			return h.fn(args)
		}
	}
	return 1, nil
}

func (f *fakeQueryer) writesContaining(sub string) []string {
	var out []string
	for _, w := range f.writes {
		if strings.Contains(w, sub) {
			out = append(out, w)
		}
	}
	return out
}

func rows(rs ...store.Row) func(args []any) ([]store.Row, error) {
	return func([]any) ([]store.Row, error) { return rs, nil }
}

func noRows() func(args []any) ([]store.Row, error) {
	return func([]any) ([]store.Row, error) { return nil, nil }
}
