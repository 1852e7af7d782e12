package astshim

// parsePlan parses:
//
//	plan name {
//	  reach goal1, goal2 via (Bp1: v1 v2) * (Bp2: v3)
//	  reach goal3 via (Bp1: *)
//	}
func parsePlan(l *lexer) (Plan, error) {
	l.skipWS()
	name, ok := l.ident()
	if !ok {
		return Plan{}, errAt(l, "expected a plan name")
	}
	if err := l.expect('{'); err != nil {
		return Plan{}, err
	}
	var crossProducts []CrossProduct
	for {
		if l.peekAfterWS() == '}' {
			l.advance()
			return Plan{Name: name, CrossProducts: crossProducts}, nil
		}
		cp, err := parseCrossProduct(l)
		if err != nil {
			return Plan{}, err
		}
		crossProducts = append(crossProducts, cp)
	}
}

func parseCrossProduct(l *lexer) (CrossProduct, error) {
	kw, ok := l.ident()
	if !ok || kw != "reach" {
		return CrossProduct{}, errAt(l, "expected 'reach'")
	}
	var goals []string
	for {
		l.skipWS()
		g, ok := l.ident()
		if !ok {
			return CrossProduct{}, errAt(l, "expected a goal task name")
		}
		goals = append(goals, g)
		if l.peekAfterWS() == ',' {
			l.advance()
			continue
		}
		break
	}
	kw, ok = l.ident()
	if !ok || kw != "via" {
		return CrossProduct{}, errAt(l, "expected 'via'")
	}

	var branches []CrossProductBranch
	for {
		if err := l.expect('('); err != nil {
			return CrossProduct{}, err
		}
		bp, ok := l.ident()
		if !ok {
			return CrossProduct{}, errAt(l, "expected a branchpoint name")
		}
		if err := l.expect(':'); err != nil {
			return CrossProduct{}, err
		}
		l.skipWS()
		var b Branches
		if l.peekByte() == '*' {
			l.advance()
			b = Branches{Glob: true}
		} else {
			var vals []string
			for l.peekAfterWS() != ')' {
				v, ok := l.ident()
				if !ok {
					return CrossProduct{}, errAt(l, "expected a branch value name")
				}
				vals = append(vals, v)
			}
			b = Branches{Values: vals}
		}
		if err := l.expect(')'); err != nil {
			return CrossProduct{}, err
		}
		branches = append(branches, CrossProductBranch{Branchpoint: bp, Branches: b})

		if l.peekAfterWS() == '*' {
			l.advance()
			continue
		}
		break
	}

	return CrossProduct{Goals: goals, Branches: branches}, nil
}
