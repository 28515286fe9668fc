package ty

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"
	"unicode"

	"github.com/cottand/canon/frontend/ilerr"
)

// The textual syntax mirrors String():
//
//	?0 ?i1 ?f2           inference variables (type, int, float)
//	^0                   bound placeholder
//	$T $0                generic parameter, by name or index
//	{unknown}            Unknown
//	!  bool char str     simple types, plus iN/uN/isize/usize and f32/f64
//	Vec<A, B>            ADT
//	() (A,) (A, B)       tuples
//	&A [A] [A; _]        reference, slice, array
//	fn(A, B) -> R        function pointer
//	<A as Trait<B>>::Item
//
// A trait ref is `A: Trait<B>`, a projection predicate `<A as Trait>::Item == B`.

// Parse reads a single type
func Parse(src string) (Ty, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	t := p.ty()
	p.expectEOF()
	if p.err != nil {
		return nil, p.err
	}
	return t, nil
}

// MustParse is Parse for trusted input; it panics on malformed types
func MustParse(src string) Ty {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTraitRef reads `Self: Trait<Args...>`
func ParseTraitRef(src string) (TraitRef, error) {
	p, err := newParser(src)
	if err != nil {
		return TraitRef{}, err
	}
	ref := p.traitRef()
	p.expectEOF()
	if p.err != nil {
		return TraitRef{}, p.err
	}
	return ref, nil
}

// ParseProjectionPredicate reads `<Self as Trait<Args...>>::Name == Ty`
func ParseProjectionPredicate(src string) (ProjectionPredicate, error) {
	p, err := newParser(src)
	if err != nil {
		return ProjectionPredicate{}, err
	}
	lhs := p.ty()
	proj, ok := lhs.(Projection)
	if !ok && p.err == nil {
		p.fail(p.tokens[0], "expected a projection on the left of '=='")
	}
	p.expect("==")
	rhs := p.ty()
	p.expectEOF()
	if p.err != nil {
		return ProjectionPredicate{}, p.err
	}
	return ProjectionPredicate{Projection: proj.ProjectionTy, Ty: rhs}, nil
}

type tokenKind uint8

const (
	tkIdent tokenKind = iota
	tkNumber
	tkPunct
	tkEOF
)

type tok struct {
	kind   tokenKind
	text   string
	offset int
}

// multi-character punctuation, longest first
var puncts = []string{"==", "->", "::", "?", "^", "$", "<", ">", "(", ")", "[", "]", "{", "}", ",", ";", "&", ":", "!", "_"}

func lex(src string) ([]tok, error) {
	var tokens []tok
	i := 0
outer:
	for i < len(src) {
		r := rune(src[i])
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r):
			start := i
			for i < len(src) && unicode.IsDigit(rune(src[i])) {
				i++
			}
			tokens = append(tokens, tok{kind: tkNumber, text: src[start:i], offset: start})
		case unicode.IsLetter(r) || (r == '_' && i+1 < len(src) && isIdentRune(rune(src[i+1]))):
			start := i
			for i < len(src) && isIdentRune(rune(src[i])) {
				i++
			}
			tokens = append(tokens, tok{kind: tkIdent, text: src[start:i], offset: start})
		default:
			for _, punct := range puncts {
				if strings.HasPrefix(src[i:], punct) {
					tokens = append(tokens, tok{kind: tkPunct, text: punct, offset: i})
					i += len(punct)
					continue outer
				}
			}
			return nil, parseError(src, i, i+1, fmt.Sprintf("unexpected character %q", r))
		}
	}
	tokens = append(tokens, tok{kind: tkEOF, offset: len(src)})
	return tokens, nil
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func parseError(src string, start, end int, msg string) error {
	return ilerr.New(ilerr.NewParse{
		Positioner:    ilerr.Span{Start: token.Pos(start + 1), Stop: token.Pos(end + 1)},
		Source:        src,
		ParserMessage: msg,
	})
}

type parser struct {
	src    string
	tokens []tok
	pos    int
	err    error
	// params assigns indexes to named generic parameters in order of appearance
	params map[string]uint32
}

func newParser(src string) (*parser, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, tokens: tokens, params: make(map[string]uint32)}, nil
}

func (p *parser) peek() tok { return p.tokens[p.pos] }

func (p *parser) next() tok {
	t := p.tokens[p.pos]
	if t.kind != tkEOF {
		p.pos++
	}
	return t
}

func (p *parser) is(text string) bool {
	t := p.peek()
	return t.kind == tkPunct && t.text == text
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) fail(at tok, msg string) {
	if p.err != nil {
		return
	}
	end := at.offset + len(at.text)
	if end == at.offset {
		end++
	}
	p.err = parseError(p.src, at.offset, end, msg)
}

func (p *parser) expect(text string) {
	if !p.accept(text) {
		p.fail(p.peek(), fmt.Sprintf("expected '%s'", text))
	}
}

func (p *parser) expectEOF() {
	if t := p.peek(); t.kind != tkEOF {
		p.fail(t, fmt.Sprintf("unexpected '%s'", t.text))
	}
}

func (p *parser) number() uint32 {
	t := p.next()
	if t.kind != tkNumber {
		p.fail(t, "expected a number")
		return 0
	}
	n, err := strconv.ParseUint(t.text, 10, 32)
	if err != nil {
		p.fail(t, err.Error())
	}
	return uint32(n)
}

func (p *parser) ident() string {
	t := p.next()
	if t.kind != tkIdent {
		p.fail(t, "expected an identifier")
	}
	return t.text
}

func (p *parser) list(closing string) Substs {
	params := Substs{}
	for !p.is(closing) && p.err == nil {
		params = append(params, p.ty())
		if !p.accept(",") {
			break
		}
	}
	p.expect(closing)
	return params
}

func (p *parser) ty() Ty {
	if p.err != nil {
		return Unknown{}
	}
	t := p.peek()
	switch {
	case t.kind == tkPunct:
		return p.punctTy()
	case t.kind == tkIdent:
		return p.namedTy()
	}
	p.fail(t, "expected a type")
	return Unknown{}
}

func (p *parser) punctTy() Ty {
	t := p.next()
	switch t.text {
	case "?":
		return p.inferVar(t)
	case "^":
		return Bound(p.number())
	case "$":
		if p.peek().kind == tkNumber {
			return Param{Idx: p.number()}
		}
		name := p.ident()
		idx, ok := p.params[name]
		if !ok {
			idx = uint32(len(p.params))
			p.params[name] = idx
		}
		return Param{Idx: idx, Name: name}
	case "{":
		if name := p.ident(); name != "unknown" {
			p.fail(t, "expected {unknown}")
		}
		p.expect("}")
		return Unknown{}
	case "!":
		return Never()
	case "&":
		return Ref(p.ty())
	case "[":
		elem := p.ty()
		if p.accept(";") {
			if !p.accept("_") {
				p.number()
			}
			p.expect("]")
			return Array(elem)
		}
		p.expect("]")
		return Slice(elem)
	case "(":
		if p.accept(")") {
			return Tuple()
		}
		first := p.ty()
		if p.accept(")") {
			return first
		}
		p.expect(",")
		rest := p.list(")")
		return Tuple(append(Substs{first}, rest...)...)
	case "<":
		self := p.ty()
		if name := p.ident(); name != "as" {
			p.fail(t, "expected 'as' in projection")
		}
		trait, args := p.traitPath()
		p.expect(">")
		p.expect("::")
		assoc := p.ident()
		return Projection{ProjectionTy{
			Assoc:  AssocType{Trait: trait, Name: assoc},
			Params: append(Substs{self}, args...),
		}}
	}
	p.fail(t, fmt.Sprintf("unexpected '%s'", t.text))
	return Unknown{}
}

func (p *parser) inferVar(at tok) Ty {
	t := p.next()
	switch t.kind {
	case tkNumber:
		n, err := strconv.ParseUint(t.text, 10, 32)
		if err != nil {
			p.fail(t, err.Error())
		}
		return NewTypeVar(TypeVarID(n))
	case tkIdent:
		if len(t.text) > 1 && (t.text[0] == 'i' || t.text[0] == 'f') {
			n, err := strconv.ParseUint(t.text[1:], 10, 32)
			if err == nil {
				if t.text[0] == 'i' {
					return NewIntVar(TypeVarID(n))
				}
				return NewFloatVar(TypeVarID(n))
			}
		}
	}
	p.fail(at, "malformed inference variable")
	return Unknown{}
}

func (p *parser) namedTy() Ty {
	name := p.ident()
	switch {
	case name == "fn":
		p.expect("(")
		args := p.list(")")
		var ret Ty = Tuple()
		if p.accept("->") {
			ret = p.ty()
		}
		return FnPtr(args, ret)
	case name == "bool":
		return Bool()
	case name == "char":
		return Char()
	case name == "str":
		return Str()
	case intNames[name]:
		return Int(name)
	case floatNames[name]:
		return Float(name)
	}
	var params Substs
	if p.accept("<") {
		params = p.list(">")
	}
	return Adt(name, params...)
}

func (p *parser) traitPath() (TraitID, Substs) {
	name := p.ident()
	var args Substs
	if p.accept("<") {
		args = p.list(">")
	}
	return TraitID(name), args
}

func (p *parser) traitRef() TraitRef {
	self := p.ty()
	p.expect(":")
	trait, args := p.traitPath()
	return TraitRef{Trait: trait, Substs: append(Substs{self}, args...)}
}
