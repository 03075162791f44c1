package docs

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/sdlc-tools/mcp-server/pkg/javasrc"
)

type apiPackage struct {
	Name    string
	Classes []apiClass
}

type apiClass struct {
	Package   string
	Name      string
	Interface bool
	Doc       string
	Methods   []apiMethod
}

type apiMethod struct {
	Name       string
	ReturnType string
	Doc        string
	Params     []javasrc.Param
	Throws     []string
}

// Signature renders the method the way it is declared
func (m apiMethod) Signature() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Type + " " + p.Name
	}
	sig := m.ReturnType + " " + m.Name + "(" + strings.Join(params, ", ") + ")"
	if len(m.Throws) > 0 {
		sig += " throws " + strings.Join(m.Throws, ", ")
	}
	return sig
}

// GenerateAPIDocs renders Markdown docs for the public top level class of
// every source file whose package starts with packageFilter
func GenerateAPIDocs(ctx context.Context, root, packageFilter string) (string, error) {
	files, err := mainSources(ctx, root)
	if err != nil {
		return "", err
	}

	var classes []apiClass
	for _, path := range files {
		f, err := javasrc.ParseFile(path)
		if err != nil {
			continue
		}
		if cls, ok := documentedClass(f, packageFilter); ok {
			classes = append(classes, cls)
		}
	}
	slices.SortStableFunc(classes, func(a, b apiClass) int {
		return cmp.Or(strings.Compare(a.Package, b.Package), strings.Compare(a.Name, b.Name))
	})

	var packages []apiPackage
	for _, cls := range classes {
		if n := len(packages); n == 0 || packages[n-1].Name != cls.Package {
			packages = append(packages, apiPackage{Name: cls.Package})
		}
		last := &packages[len(packages)-1]
		last.Classes = append(last.Classes, cls)
	}
	return render("api.md.tmpl", packages)
}

func documentedClass(f *javasrc.File, packageFilter string) (apiClass, bool) {
	if packageFilter != "" && !strings.HasPrefix(f.Package, packageFilter) {
		return apiClass{}, false
	}
	t := f.FirstClassOrInterface()
	if t == nil || !t.IsPublic() {
		return apiClass{}, false
	}

	cls := apiClass{
		Package:   f.Package,
		Name:      t.Name,
		Interface: t.Kind == javasrc.KindInterface,
		Doc:       javasrc.DocDescription(t.Javadoc),
	}
	for _, m := range t.Methods {
		if !m.IsPublic() {
			continue
		}
		cls.Methods = append(cls.Methods, apiMethod{
			Name:       m.Name,
			ReturnType: m.ReturnType,
			Doc:        javasrc.DocDescription(m.Javadoc),
			Params:     m.Params,
			Throws:     m.Throws,
		})
	}
	return cls, true
}
