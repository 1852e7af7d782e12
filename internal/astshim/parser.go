package astshim

import (
	"strings"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// Parse parses the full contents of one workflow file into its top-level
// Items, in source order.
func Parse(src string) ([]Item, error) {
	l := newLexer(src)
	var items []Item
	for {
		l.skipWS()
		if l.atEnd() {
			return items, nil
		}
		item, err := parseItem(l)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func parseItem(l *lexer) (Item, error) {
	kw, ok := l.ident()
	if !ok {
		return Item{}, errAt(l, "expected a top-level keyword (task, plan, module, import, config)")
	}
	switch kw {
	case "import":
		l.skipWS()
		if err := l.expect('"'); err != nil {
			return Item{}, err
		}
		path, err := l.quotedString()
		if err != nil {
			return Item{}, err
		}
		return Item{Kind: ItemImport, ImportPath: path}, nil
	case "config":
		assts, err := parseConfigBlock(l)
		if err != nil {
			return Item{}, err
		}
		return Item{Kind: ItemGlobalConfig, Config: assts}, nil
	case "module":
		l.skipWS()
		name, ok := l.ident()
		if !ok {
			return Item{}, errAt(l, "expected a module name")
		}
		if err := l.expect('='); err != nil {
			return Item{}, err
		}
		rhs, err := parseRhs(l)
		if err != nil {
			return Item{}, err
		}
		return Item{Kind: ItemModule, ModuleName: name, ModulePath: rhs}, nil
	case "task":
		task, err := parseTask(l)
		if err != nil {
			return Item{}, err
		}
		return Item{Kind: ItemTask, Task: task}, nil
	case "plan":
		plan, err := parsePlan(l)
		if err != nil {
			return Item{}, err
		}
		return Item{Kind: ItemPlan, PlanVal: plan}, nil
	default:
		return Item{}, errAt(l, "unrecognized top-level keyword %q", kw)
	}
}

func parseConfigBlock(l *lexer) ([]ConfigAssignment, error) {
	if err := l.expect('{'); err != nil {
		return nil, err
	}
	var out []ConfigAssignment
	for {
		if l.peekAfterWS() == '}' {
			l.advance()
			return out, nil
		}
		name, ok := l.ident()
		if !ok {
			return nil, errAt(l, "expected a config variable name")
		}
		if err := l.expect('='); err != nil {
			return nil, err
		}
		rhs, err := parseRhs(l)
		if err != nil {
			return nil, err
		}
		out = append(out, ConfigAssignment{Name: name, Rhs: rhs})
	}
}

// parseTask parses:
//
//	task name <
//	  in1 = $x
//	  in2
//	>
//	  out1
//	  -p param1 = $z
//	  @module_name
//	:: {
//	  bash code
//	}
func parseTask(l *lexer) (TasklikeBlock, error) {
	l.skipWS()
	name, ok := l.ident()
	if !ok {
		return TasklikeBlock{}, errAt(l, "expected a task name")
	}

	var specs []BlockSpec
	if err := l.expect('<'); err != nil {
		return TasklikeBlock{}, err
	}
	for l.peekAfterWS() != '>' {
		spec, err := parseHeaderEntry(l, SpecInput)
		if err != nil {
			return TasklikeBlock{}, err
		}
		specs = append(specs, spec)
	}
	l.advance() // consume '>'

	for {
		b := l.peekAfterWS()
		if b == ':' {
			break
		}
		spec, err := parseHeaderEntry(l, SpecOutput)
		if err != nil {
			return TasklikeBlock{}, err
		}
		specs = append(specs, spec)
	}

	if err := l.expect(':'); err != nil {
		return TasklikeBlock{}, err
	}
	if err := l.expect(':'); err != nil {
		return TasklikeBlock{}, err
	}
	if err := l.expect('{'); err != nil {
		return TasklikeBlock{}, err
	}
	code, err := parseCode(l)
	if err != nil {
		return TasklikeBlock{}, err
	}

	return TasklikeBlock{Name: name, Specs: specs, Code: code}, nil
}

// parseHeaderEntry parses one spec line within a task's header:
//   - "-p name = rhs"        -> param
//   - "@name"                -> inline module marker
//   - "name" or "name = rhs" -> input/output (Unbound if no rhs given)
func parseHeaderEntry(l *lexer, defaultKind BlockSpecKind) (BlockSpec, error) {
	l.skipWS()
	if l.peekByte() == '-' && strings.HasPrefix(l.src[l.pos:], "-p") {
		l.pos += 2
		l.skipWS()
		name, ok := l.ident()
		if !ok {
			return BlockSpec{}, errAt(l, "expected a param name after -p")
		}
		dot := false
		if l.peekAfterWS() == '.' {
			l.advance()
			dot = true
		}
		if err := l.expect('='); err != nil {
			return BlockSpec{}, err
		}
		rhs, err := parseRhs(l)
		if err != nil {
			return BlockSpec{}, err
		}
		return BlockSpec{Kind: SpecParam, Lhs: name, Rhs: rhs, Dot: dot}, nil
	}
	if l.peekByte() == '@' {
		l.advance()
		name, ok := l.ident()
		if !ok {
			return BlockSpec{}, errAt(l, "expected a module name after @")
		}
		return BlockSpec{Kind: SpecModule, Name: name}, nil
	}

	name, ok := l.ident()
	if !ok {
		return BlockSpec{}, errAt(l, "expected an input/output name")
	}
	if l.peekAfterWS() == '=' {
		l.advance()
		rhs, err := parseRhs(l)
		if err != nil {
			return BlockSpec{}, err
		}
		return BlockSpec{Kind: defaultKind, Lhs: name, Rhs: rhs}, nil
	}
	return BlockSpec{Kind: defaultKind, Lhs: name, Rhs: Rhs{Kind: RhsUnbound}}, nil
}

// parseCode consumes raw bash text up to the matching closing brace,
// tracking nested braces so a brace inside the bash body (e.g. a shell
// ${var} expansion or a function definition) doesn't end the block early.
func parseCode(l *lexer) (BashCode, error) {
	start := l.pos
	depth := 1
	for {
		if l.atEnd() {
			return BashCode{}, errAt(l, "unterminated task code block")
		}
		b := l.advance()
		if b == '{' {
			depth++
		} else if b == '}' {
			depth--
			if depth == 0 {
				text := l.src[start : l.pos-1]
				return BashCode{Text: text, Vars: extractBashVars(text)}, nil
			}
		}
	}
}

func errAt(l *lexer, format string, args ...any) error {
	return rerrors.New(rerrors.KindUnsupportedFeature, "line %d: "+format, append([]any{l.line}, args...)...)
}
