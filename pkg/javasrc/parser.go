package javasrc

import "strings"

var modifierWords = map[string]bool{
	"public": true, "protected": true, "private": true,
	"static": true, "final": true, "abstract": true,
	"default": true, "synchronized": true, "native": true,
	"transient": true, "volatile": true, "strictfp": true,
	"sealed": true,
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) eof() bool { return p.pos >= len(p.toks) }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return token{kind: tokSymbol}
	}
	return p.toks[p.pos+n]
}

func (p *parser) peek() token { return p.peekAt(0) }

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) file() *File {
	f := &File{}
	for !p.eof() {
		t := p.peek()
		switch {
		case t.kind == tokDoc && (p.peekAt(1).is("package") || p.peekAt(1).is("import")):
			p.pos++
		case t.is("package"):
			p.pos++
			f.Package = p.qualifiedName()
			p.skipPast(";")
		case t.is("import"):
			p.skipPast(";")
		case t.is("}"):
			p.pos++
		default:
			if typ := p.declaration(nil); typ != nil {
				f.Types = append(f.Types, typ)
			}
		}
	}
	return f
}

// body parses members up to the closing brace of a type body and returns
// the nested types
func (p *parser) body(owner *Type) []*Type {
	var nested []*Type
	for !p.eof() {
		if p.peek().is("}") {
			p.pos++
			return nested
		}
		if typ := p.declaration(owner); typ != nil {
			nested = append(nested, typ)
		}
	}
	return nested
}

// declaration parses one member. Type declarations are returned; methods,
// constructors and fields are recorded on owner.
func (p *parser) declaration(owner *Type) *Type {
	var doc string
	var mods, annotations []string
	for !p.eof() {
		t := p.peek()
		switch {
		case t.kind == tokDoc:
			doc = t.text
			p.pos++
			continue
		case t.is("@") && !p.peekAt(1).is("interface"):
			annotations = append(annotations, p.annotation())
			continue
		case t.is("non") && p.peekAt(1).is("-") && p.peekAt(2).is("sealed"):
			mods = append(mods, "non-sealed")
			p.pos += 3
			continue
		case t.kind == tokIdent && modifierWords[t.text]:
			mods = append(mods, t.text)
			p.pos++
			continue
		}
		break
	}

	t := p.peek()
	switch {
	case p.eof():
		return nil
	case t.is(";"):
		p.pos++
		return nil
	case t.is("{"):
		p.skipBalanced()
		return nil
	case t.is("@") && p.peekAt(1).is("interface"):
		p.pos += 2
		return p.typeDecl(KindAnnotation, doc, mods, annotations)
	case t.is("class"):
		p.pos++
		return p.typeDecl(KindClass, doc, mods, annotations)
	case t.is("interface"):
		p.pos++
		return p.typeDecl(KindInterface, doc, mods, annotations)
	case t.is("enum"):
		p.pos++
		return p.typeDecl(KindEnum, doc, mods, annotations)
	case t.is("record") && p.peekAt(1).kind == tokIdent && (p.peekAt(2).is("(") || p.peekAt(2).is("<")):
		p.pos++
		return p.typeDecl(KindRecord, doc, mods, annotations)
	}

	p.member(owner, doc, mods)
	return nil
}

func (p *parser) typeDecl(kind Kind, doc string, mods, annotations []string) *Type {
	t := &Type{Kind: kind, Javadoc: doc, Modifiers: mods, Annotations: annotations}
	if p.peek().kind == tokIdent {
		t.Name = p.next().text
	}
	// type parameters, record components, extends, implements, permits
	for !p.eof() && !p.peek().is("{") {
		if p.peek().is("(") {
			p.skipBalanced()
			continue
		}
		p.pos++
	}
	if p.eof() {
		return t
	}
	p.pos++
	if kind == KindEnum {
		p.enumConstants()
	}
	t.Nested = p.body(t)
	return t
}

func (p *parser) enumConstants() {
	for !p.eof() {
		t := p.peek()
		switch {
		case t.is(";"):
			p.pos++
			return
		case t.is("}"):
			return
		case t.is("(") || t.is("{"):
			p.skipBalanced()
		default:
			p.pos++
		}
	}
}

// member parses a method, constructor or field declaration whose modifiers
// have been consumed
func (p *parser) member(owner *Type, doc string, mods []string) {
	if p.peek().is("<") {
		p.skipAngles()
	}

	var head []token
	angle := 0
	for !p.eof() {
		t := p.peek()
		if angle == 0 && (t.is("(") || t.is("=") || t.is(";") || t.is(",") || t.is("{") || t.is("}")) {
			break
		}
		switch {
		case t.kind == tokDoc:
			p.pos++
			continue
		case t.is("@"):
			p.annotation()
			continue
		case t.is("<"):
			angle++
		case t.is(">"):
			angle--
		}
		head = append(head, t)
		p.pos++
	}

	if len(head) == 0 {
		if !p.eof() && !p.peek().is("}") {
			p.pos++
		}
		return
	}
	if p.peek().is("(") {
		p.method(owner, doc, mods, head)
		return
	}
	p.fields(owner, doc, mods, head)
}

func (p *parser) method(owner *Type, doc string, mods []string, head []token) {
	name := head[len(head)-1].text
	params := p.params()

	var throws []string
	for !p.eof() {
		t := p.peek()
		if t.is("{") {
			p.skipBalanced()
			break
		}
		if t.is(";") {
			p.pos++
			break
		}
		if t.is("}") {
			break
		}
		if t.is("throws") {
			p.pos++
			throws = p.typeList()
			continue
		}
		// array dimensions or an annotation element default
		if t.is("(") || t.is("[") {
			p.skipBalanced()
			continue
		}
		p.pos++
	}

	if owner == nil {
		return
	}
	if len(head) == 1 {
		if name == owner.Name {
			owner.Constructors++
		}
		return
	}
	owner.Methods = append(owner.Methods, &Method{
		Name:       name,
		ReturnType: joinType(head[:len(head)-1]),
		Params:     params,
		Throws:     throws,
		Modifiers:  mods,
		Javadoc:    doc,
	})
}

// typeList reads comma separated types up to a body or terminator
func (p *parser) typeList() []string {
	var types []string
	var cur []token
	for !p.eof() && !p.peek().is("{") && !p.peek().is(";") && !p.peek().is("}") {
		t := p.next()
		if t.is(",") {
			types = append(types, joinType(cur))
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		types = append(types, joinType(cur))
	}
	return types
}

func (p *parser) params() []Param {
	p.pos++
	var params []Param
	var cur []token
	flush := func() {
		for len(cur) > 0 && cur[0].is("final") {
			cur = cur[1:]
		}
		if typ, name := declarator(cur); name != "" && typ != "" {
			params = append(params, Param{Name: name, Type: typ})
		}
		cur = nil
	}

	depth := 0
	for !p.eof() {
		t := p.peek()
		if t.is("@") {
			p.annotation()
			continue
		}
		p.pos++
		switch {
		case t.is("(") || t.is("<"):
			depth++
		case t.is(">"):
			depth--
		case t.is(")"):
			if depth == 0 {
				flush()
				return params
			}
			depth--
		case t.is(",") && depth == 0:
			flush()
			continue
		}
		cur = append(cur, t)
	}
	flush()
	return params
}

func (p *parser) fields(owner *Type, doc string, mods []string, head []token) {
	if p.peek().is("{") {
		// compact record constructor
		if owner != nil && len(head) == 1 && head[0].text == owner.Name {
			owner.Constructors++
		}
		p.skipBalanced()
		return
	}

	typ, name := declarator(head)
	add := func(name string) {
		if owner != nil && typ != "" && name != "" {
			owner.Fields = append(owner.Fields, &Field{Name: name, Type: typ, Modifiers: mods, Javadoc: doc})
		}
	}
	add(name)

	for !p.eof() {
		t := p.peek()
		switch {
		case t.is(";"):
			p.pos++
			return
		case t.is("}"):
			return
		case t.is("(") || t.is("{") || t.is("["):
			p.skipBalanced()
		case t.is(","):
			p.pos++
			// a further declarator, not a comma inside a generic initializer
			next, after := p.peek(), p.peekAt(1)
			if next.kind == tokIdent && (after.is("=") || after.is(";") || after.is(",") || after.is("[")) {
				add(next.text)
				p.pos++
			}
		default:
			p.pos++
		}
	}
}

// declarator splits "Type name" tokens, moving C style array brackets that
// follow the name onto the type
func declarator(toks []token) (typ, name string) {
	dims := 0
	for len(toks) >= 2 && toks[len(toks)-1].is("]") && toks[len(toks)-2].is("[") {
		toks = toks[:len(toks)-2]
		dims++
	}
	if len(toks) < 2 || toks[len(toks)-1].kind != tokIdent {
		return "", ""
	}
	typ = joinType(toks[:len(toks)-1]) + strings.Repeat("[]", dims)
	return typ, toks[len(toks)-1].text
}

func (p *parser) annotation() string {
	p.pos++
	name := p.qualifiedName()
	if p.peek().is("(") {
		p.skipBalanced()
	}
	return name
}

func (p *parser) qualifiedName() string {
	var b strings.Builder
	for p.peek().kind == tokIdent {
		b.WriteString(p.next().text)
		if !p.peek().is(".") || p.peekAt(1).kind != tokIdent {
			break
		}
		p.pos++
		b.WriteByte('.')
	}
	return b.String()
}

func (p *parser) skipPast(s string) {
	for !p.eof() {
		if p.next().is(s) {
			return
		}
	}
}

func (p *parser) skipAngles() {
	depth := 0
	for !p.eof() {
		t := p.next()
		if t.is("<") {
			depth++
		} else if t.is(">") {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// skipBalanced consumes a bracketed group starting at the current opener
func (p *parser) skipBalanced() {
	depth := 0
	for !p.eof() {
		t := p.next()
		switch {
		case t.is("(") || t.is("{") || t.is("["):
			depth++
		case t.is(")") || t.is("}") || t.is("]"):
			depth--
			if depth == 0 {
				return
			}
		}
	}
}
