package workflow

import (
	"strings"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
)

// MakeInterpolated renders orig (a literal template like "$v1 and $v2") into
// buf, substituting each (ident, literal) pair in vars in order.
//
// vars must list each substitution in the order its "$name" occurrence
// appears in orig: the scan position only ever moves forward, so a
// substituted value is never re-scanned for a later variable's occurrence
// (this also means a substituted value containing "$othervar" text is never
// mistaken for a real reference).
func (s *WorkflowStrings) MakeInterpolated(orig ident.LiteralId, vars []value.InterpVar, buf *strings.Builder) error {
	origStr, err := s.Literals.Get(orig)
	if err != nil {
		return err
	}
	buf.WriteString(origStr)

	rendered := buf.String()
	scanStart := 0
	for _, v := range vars {
		identStr, err := s.Idents.Get(v.Ident)
		if err != nil {
			return err
		}
		valStr, err := s.Literals.Get(v.Lit)
		if err != nil {
			return err
		}
		needle := "$" + identStr

		offset := strings.Index(rendered[scanStart:], needle)
		if offset < 0 {
			return rerrors.New(rerrors.KindInterpolationFailed, "unable to interpolate %q into %q", needle, rendered)
		}
		start := scanStart + offset
		end := start + len(needle)
		rendered = rendered[:start] + valStr + rendered[end:]
		scanStart = start + len(valStr)
	}

	buf.Reset()
	buf.WriteString(rendered)
	return nil
}
