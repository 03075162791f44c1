// Package javasrc extracts a declaration outline from Java source: the
// package, the declared types and their methods, constructors and fields.
// Method bodies and initializers are skipped, so anonymous classes are not
// part of the outline.
package javasrc

import (
	"os"
	"slices"
	"strings"
)

// Kind is the kind of a type declaration
type Kind string

const (
	KindClass      Kind = "class"
	KindInterface  Kind = "interface"
	KindEnum       Kind = "enum"
	KindRecord     Kind = "record"
	KindAnnotation Kind = "annotation"
)

// File is the outline of one compilation unit
type File struct {
	Package string
	Types   []*Type
}

// Type is a class, interface, enum, record or annotation declaration
type Type struct {
	Name         string
	Kind         Kind
	Modifiers    []string
	Annotations  []string
	Javadoc      string
	Methods      []*Method
	Fields       []*Field
	Constructors int
	Nested       []*Type
}

// Method is a method declaration
type Method struct {
	Name       string
	ReturnType string
	Params     []Param
	Throws     []string
	Modifiers  []string
	Javadoc    string
}

// Param is a method parameter
type Param struct {
	Name string
	Type string
}

// Field is one declared variable of a field declaration
type Field struct {
	Name      string
	Type      string
	Modifiers []string
	Javadoc   string
}

func hasModifier(mods []string, m string) bool { return slices.Contains(mods, m) }

func (t *Type) IsPublic() bool   { return hasModifier(t.Modifiers, "public") }
func (t *Type) IsAbstract() bool { return hasModifier(t.Modifiers, "abstract") }
func (t *Type) IsFinal() bool    { return hasModifier(t.Modifiers, "final") }

// IsClassOrInterface reports whether t is a class or an interface
func (t *Type) IsClassOrInterface() bool {
	return t.Kind == KindClass || t.Kind == KindInterface
}

func (m *Method) IsPublic() bool { return hasModifier(m.Modifiers, "public") }
func (m *Method) IsStatic() bool { return hasModifier(m.Modifiers, "static") }

// IsVoid reports whether the method returns nothing
func (m *Method) IsVoid() bool { return m.ReturnType == "void" }

// Signature returns name(Type, Type)
func (m *Method) Signature() string {
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		types[i] = p.Type
	}
	return m.Name + "(" + strings.Join(types, ", ") + ")"
}

// ParamTypes returns the declared parameter types in order
func (m *Method) ParamTypes() []string {
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		types[i] = p.Type
	}
	return types
}

func (f *Field) IsPublic() bool { return hasModifier(f.Modifiers, "public") }
func (f *Field) IsStatic() bool { return hasModifier(f.Modifiers, "static") }

// AllTypes returns every type declaration, nested ones included, in source
// order with each type before its members
func (f *File) AllTypes() []*Type {
	var all []*Type
	var walk func([]*Type)
	walk = func(types []*Type) {
		for _, t := range types {
			all = append(all, t)
			walk(t.Nested)
		}
	}
	walk(f.Types)
	return all
}

// FirstClass returns the first class declaration that is not an interface
func (f *File) FirstClass() *Type {
	for _, t := range f.AllTypes() {
		if t.Kind == KindClass {
			return t
		}
	}
	return nil
}

// FirstClassOrInterface returns the first class or interface declaration
func (f *File) FirstClassOrInterface() *Type {
	for _, t := range f.AllTypes() {
		if t.IsClassOrInterface() {
			return t
		}
	}
	return nil
}

// Parse builds the outline of src. Parsing is lenient: unbalanced input
// yields whatever was declared before the point of confusion.
func Parse(src string) *File {
	p := &parser{toks: tokenize(src)}
	return p.file()
}

// ParseFile reads and parses the Java file at path
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}
