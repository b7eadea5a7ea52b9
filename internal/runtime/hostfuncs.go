package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/risor-io/risor/object"

	"github.com/jward/wordle/internal/lexer"
)

func wordsObject(words map[string]int) *object.Map {
	m := make(map[string]object.Object, len(words))
	for w, n := range words {
		m[w] = object.NewInt(int64(n))
	}
	return object.NewMap(m)
}

func stringList(vals []string) *object.List {
	items := make([]object.Object, len(vals))
	for i, v := range vals {
		items[i] = object.NewString(v)
	}
	return object.NewList(items)
}

// wordsFromResult converts a script's final value into a sorted word list.
func wordsFromResult(result object.Object) ([]string, error) {
	if result == nil {
		return nil, nil
	}
	var out []string
	switch v := result.Interface().(type) {
	case nil:
		return nil, nil
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("stop-word list item must be a string, got %T", item)
			}
			out = append(out, s)
		}
	case map[string]any:
		for k := range v {
			out = append(out, k)
		}
	default:
		return nil, fmt.Errorf("stop-word script must evaluate to a list or map, got %s", result.Type())
	}
	sort.Strings(out)
	return out, nil
}

// makeKeywordsFn creates the "keywords" host function.
//
// keywords(language) → list of reserved words ([] when unknown)
func makeKeywordsFn() *object.Builtin {
	return object.NewBuiltin("keywords", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("keywords", 1, len(args))
		}
		langStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("keywords: language must be a string, got %s", args[0].Type())
		}
		return stringList(lexer.Keywords(langStr.Value()))
	})
}

// logObject provides log.info/warn/error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "script")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "script")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "script")
}
