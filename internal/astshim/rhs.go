package astshim

// parseRhs parses one right-hand-side value expression: a quoted string or
// bare word (a literal, or an interpolation if it contains "$ident"), a
// "$name" reference with optional "@task" and "[Bp.val]" suffixes, an "@"
// shorthand, or a "(Branchpoint: ...)" expression.
func parseRhs(l *lexer) (Rhs, error) {
	l.skipWS()
	switch {
	case l.atEnd():
		return Rhs{}, errAt(l, "expected a value")
	case l.peekByte() == '"':
		l.advance()
		text, err := l.quotedString()
		if err != nil {
			return Rhs{}, err
		}
		return literalOrInterp(text), nil
	case l.peekByte() == '$':
		return parseDollarRhs(l)
	case l.peekByte() == '@':
		return parseAtRhs(l)
	case l.peekByte() == '(':
		return parseBranchpointRhs(l)
	default:
		word := bareword(l)
		if word == "" {
			return Rhs{}, errAt(l, "expected a value")
		}
		return literalOrInterp(word), nil
	}
}

func parseDollarRhs(l *lexer) (Rhs, error) {
	l.advance() // '$'
	name, ok := l.ident()
	if !ok {
		return Rhs{}, errAt(l, "expected an identifier after $")
	}
	if l.peekByte() == '@' {
		l.advance()
		task, ok := l.ident()
		if !ok {
			return Rhs{}, errAt(l, "expected a task name after @")
		}
		if l.peekByte() == '[' {
			branch, err := parseBranchGraft(l)
			if err != nil {
				return Rhs{}, err
			}
			return Rhs{Kind: RhsGraftedTaskOutput, Task: task, Output: name, Branch: branch}, nil
		}
		return Rhs{Kind: RhsTaskOutput, Task: task, Output: name}, nil
	}
	if l.peekByte() == '[' {
		branch, err := parseBranchGraft(l)
		if err != nil {
			return Rhs{}, err
		}
		return Rhs{Kind: RhsGraftedVariable, Name: name, Branch: branch}, nil
	}
	return Rhs{Kind: RhsVariable, Name: name}, nil
}

func parseAtRhs(l *lexer) (Rhs, error) {
	l.advance() // '@'
	if l.atEnd() || !isIdentByte(l.peekByte()) {
		return Rhs{Kind: RhsShorthandVariable}, nil
	}
	task, _ := l.ident()
	if l.peekByte() == '[' {
		branch, err := parseBranchGraft(l)
		if err != nil {
			return Rhs{}, err
		}
		return Rhs{Kind: RhsShorthandGraftedTaskOutput, Task: task, Branch: branch}, nil
	}
	return Rhs{Kind: RhsShorthandTaskOutput, Task: task}, nil
}

// parseBranchGraft parses one or more "[Branchpoint.value]" suffixes.
func parseBranchGraft(l *lexer) (BranchSpecLit, error) {
	var out BranchSpecLit
	for l.peekByte() == '[' {
		l.advance()
		bp, ok := l.ident()
		if !ok {
			return nil, errAt(l, "expected a branchpoint name inside [...]")
		}
		if err := l.expect('.'); err != nil {
			return nil, err
		}
		val, ok := l.ident()
		if !ok {
			return nil, errAt(l, "expected a branch value name after '.'")
		}
		if err := l.expect(']'); err != nil {
			return nil, err
		}
		out = append(out, BranchPair{Branchpoint: bp, Value: val})
	}
	return out, nil
}

// parseBranchpointRhs parses "(Branchpoint: alt1=rhs1 alt2=rhs2 ...)".
func parseBranchpointRhs(l *lexer) (Rhs, error) {
	l.advance() // '('
	l.skipWS()
	bp, ok := l.ident()
	if !ok {
		return Rhs{}, errAt(l, "expected a branchpoint name after (")
	}
	if err := l.expect(':'); err != nil {
		return Rhs{}, err
	}
	var alts []BranchpointAlt
	for l.peekAfterWS() != ')' {
		altName, ok := l.ident()
		if !ok {
			return Rhs{}, errAt(l, "expected a branch alternative name")
		}
		var val Rhs
		if l.peekAfterWS() == '=' {
			l.advance()
			v, err := parseRhs(l)
			if err != nil {
				return Rhs{}, err
			}
			val = v
		} else {
			val = Rhs{Kind: RhsUnbound}
		}
		alts = append(alts, BranchpointAlt{Name: altName, Val: val})
	}
	l.advance() // ')'
	return Rhs{Kind: RhsBranchpoint, BranchpointName: bp, Alts: alts}, nil
}

// bareword reads an unquoted token up to the next delimiter
// ('<', '>', '(', ')', '{', '}', '=', ',', '"', or whitespace).
func bareword(l *lexer) string {
	start := l.pos
	for !l.atEnd() {
		b := l.peekByte()
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' ||
			b == '<' || b == '>' || b == '(' || b == ')' ||
			b == '{' || b == '}' || b == '=' || b == ',' || b == '"' {
			break
		}
		l.advance()
	}
	return l.src[start:l.pos]
}

// literalOrInterp classifies text as a plain Literal, or as an Interp
// template if it contains "$ident" references to be substituted later.
func literalOrInterp(text string) Rhs {
	vars := extractDollarVars(text)
	if len(vars) == 0 {
		return Rhs{Kind: RhsLiteral, Literal: text}
	}
	return Rhs{Kind: RhsInterp, InterpText: text, InterpVars: vars}
}

// extractDollarVars scans text for "$ident" references, in the order they
// appear.
func extractDollarVars(text string) []string {
	var vars []string
	i := 0
	for i < len(text) {
		if text[i] != '$' {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && isIdentByte(text[j]) {
			j++
		}
		if j > i+1 {
			vars = append(vars, text[i+1:j])
		}
		i = j
	}
	return vars
}

// extractBashVars mirrors extractDollarVars but additionally skips content
// inside single-quoted sections, since single quotes suppress variable
// expansion in bash itself.
func extractBashVars(code string) []string {
	var vars []string
	seen := map[string]bool{}
	i := 0
	inSingle := false
	for i < len(code) {
		c := code[i]
		switch {
		case c == '\'' && !inSingle:
			inSingle = true
			i++
		case c == '\'' && inSingle:
			inSingle = false
			i++
		case c == '$' && !inSingle:
			j := i + 1
			braced := false
			if j < len(code) && code[j] == '{' {
				braced = true
				j++
			}
			start := j
			for j < len(code) && isIdentByte(code[j]) {
				j++
			}
			name := code[start:j]
			if braced && j < len(code) && code[j] == '}' {
				j++
			}
			if name != "" && !seen[name] {
				seen[name] = true
				vars = append(vars, name)
			}
			if j == i {
				j++
			}
			i = j
		default:
			i++
		}
	}
	return vars
}
