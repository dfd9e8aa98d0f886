// Package pyast extracts constructor-call expressions from Python source
// using tree-sitter. It is the structural half of the two-tier component
// extraction strategy: detectors walk the calls it returns and fall back to
// regex scanning when parsing fails.
package pyast

import (
	"context"
	"errors"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrParse indicates the source could not be parsed structurally.
// Callers should fall back to pattern-based extraction.
var ErrParse = errors.New("python source has syntax errors")

// ValueKind discriminates extracted argument values.
type ValueKind int

const (
	KindUnknown ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindNone
	KindIdent
	KindList
	KindDict
)

// Value is a literal or identifier argument extracted from a call.
type Value struct {
	Kind  ValueKind
	Str   string  // KindString: unquoted content; KindIdent: identifier name
	Num   float64 // KindNumber
	Bool  bool    // KindBool
	List  []Value
	Dict  map[string]Value // string-keyed entries only
	Raw   string           // exact source text
}

// Call is a call expression found in the source.
type Call struct {
	// Func is the called name: the identifier for `Foo(...)`, or the final
	// attribute for `mod.Foo(...)`.
	Func string
	// Receiver is the object expression text for attribute calls
	// (`agent.initiate_chat(...)` → "agent"); empty for plain calls.
	Receiver string
	// Line is the 1-based source line of the call.
	Line int
	// Args holds positional argument values in order.
	Args []Value
	// Keywords maps keyword argument names to their values.
	Keywords map[string]Value
}

// StringArg returns the first positional string argument, if any.
func (c *Call) StringArg() (string, bool) {
	for _, a := range c.Args {
		if a.Kind == KindString {
			return a.Str, true
		}
	}
	return "", false
}

// KeywordString returns the string value of a keyword argument, or "".
func (c *Call) KeywordString(name string) string {
	v, ok := c.Keywords[name]
	if !ok || v.Kind != KindString {
		return ""
	}
	return v.Str
}

// ParseCalls parses Python source and returns every call expression in the
// file, in source order. Returns ErrParse when the source is malformed
// enough that the syntax tree contains errors.
func ParseCalls(ctx context.Context, content string) ([]Call, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	src := []byte(content)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, ErrParse
	}

	var calls []Call
	collectCalls(root, src, &calls)
	return calls, nil
}

// collectCalls walks the tree depth-first appending every call expression.
func collectCalls(node *sitter.Node, src []byte, out *[]Call) {
	if node.Type() == "call" {
		if call, ok := extractCall(node, src); ok {
			*out = append(*out, call)
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectCalls(node.NamedChild(i), src, out)
	}
}

// extractCall reads the function name and arguments of a call node.
func extractCall(node *sitter.Node, src []byte) (Call, bool) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return Call{}, false
	}

	call := Call{
		Line:     int(node.StartPoint().Row) + 1,
		Keywords: make(map[string]Value),
	}

	switch fn.Type() {
	case "identifier":
		call.Func = text(fn, src)
	case "attribute":
		attr := fn.ChildByFieldName("attribute")
		if attr == nil {
			return Call{}, false
		}
		call.Func = text(attr, src)
		if obj := fn.ChildByFieldName("object"); obj != nil {
			call.Receiver = text(obj, src)
		}
	default:
		return Call{}, false
	}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return call, true
	}

	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "keyword_argument" {
			name := arg.ChildByFieldName("name")
			value := arg.ChildByFieldName("value")
			if name != nil && value != nil {
				call.Keywords[text(name, src)] = extractValue(value, src)
			}
			continue
		}
		call.Args = append(call.Args, extractValue(arg, src))
	}

	return call, true
}

// extractValue converts a literal or identifier node into a Value.
// Expressions it does not model come back as KindUnknown with raw text.
func extractValue(node *sitter.Node, src []byte) Value {
	raw := text(node, src)

	switch node.Type() {
	case "string", "concatenated_string":
		return Value{Kind: KindString, Str: stringContent(raw), Raw: raw}

	case "integer", "float":
		n, err := strconv.ParseFloat(strings.TrimSuffix(raw, "j"), 64)
		if err != nil {
			return Value{Kind: KindUnknown, Raw: raw}
		}
		return Value{Kind: KindNumber, Num: n, Raw: raw}

	case "true":
		return Value{Kind: KindBool, Bool: true, Raw: raw}
	case "false":
		return Value{Kind: KindBool, Bool: false, Raw: raw}
	case "none":
		return Value{Kind: KindNone, Raw: raw}

	case "identifier":
		return Value{Kind: KindIdent, Str: raw, Raw: raw}

	case "list", "tuple":
		v := Value{Kind: KindList, Raw: raw}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			v.List = append(v.List, extractValue(node.NamedChild(i), src))
		}
		return v

	case "dictionary":
		v := Value{Kind: KindDict, Dict: make(map[string]Value), Raw: raw}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			pair := node.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			key := pair.ChildByFieldName("key")
			val := pair.ChildByFieldName("value")
			if key == nil || val == nil {
				continue
			}
			kv := extractValue(key, src)
			if kv.Kind == KindString {
				v.Dict[kv.Str] = extractValue(val, src)
			}
		}
		return v

	default:
		return Value{Kind: KindUnknown, Raw: raw}
	}
}

func text(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}

// stringContent strips prefixes and quotes from a Python string literal.
func stringContent(raw string) string {
	// Drop string prefixes (f, r, b, u and combinations).
	trimmed := strings.TrimLeft(raw, "fFrRbBuU")

	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(trimmed, q) && strings.HasSuffix(trimmed, q) && len(trimmed) >= 2*len(q) {
			return strings.TrimSpace(trimmed[len(q) : len(trimmed)-len(q)])
		}
	}
	return strings.TrimSpace(trimmed)
}
