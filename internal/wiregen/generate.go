package wiregen

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// WireImportPath is the import path of the codec package.
const WireImportPath = "github.com/danmuck/ensiwire/internal/protocol/wire"

// RecordDirective marks a struct for derivation.
const RecordDirective = "//wire:record"

var ErrNoRecords = errors.New("wiregen: no record types selected")

// Options selects what to generate.
type Options struct {
	// Types names the structs to derive. Empty selects every struct carrying
	// the record directive.
	Types []string
	// EncodeOnly skips DecodeFrom generation.
	EncodeOnly bool
}

// FieldError reports a field the generator cannot derive.
type FieldError struct {
	Type   string
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("wiregen: %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("wiregen: %s.%s: %s", e.Type, e.Field, e.Reason)
}

type record struct {
	name   string
	fields []field
}

type field struct {
	name string
	typ  ast.Expr
}

type generator struct {
	wire    string
	imports map[string]string // local name -> path
	used    map[string]bool
	buf     bytes.Buffer
}

// Generate parses src and returns a formatted Go file holding the derived
// methods.
func Generate(filename string, src []byte, opts Options) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("wiregen: parse %s: %w", filename, err)
	}

	g := &generator{
		wire:    "wire",
		imports: make(map[string]string),
		used:    make(map[string]bool),
	}
	for _, spec := range file.Imports {
		path, _ := strconv.Unquote(spec.Path.Value)
		name := importName(path)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if path == WireImportPath {
			g.wire = name
		}
		g.imports[name] = path
	}
	g.imports[g.wire] = WireImportPath

	records, err := collectRecords(file, opts.Types)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	for _, rec := range records {
		log.Debug().Str("type", rec.name).Int("fields", len(rec.fields)).Msg("wiregen.Generate record")
		if err := g.encodeMethod(&body, rec); err != nil {
			return nil, err
		}
		if !opts.EncodeOnly {
			if err := g.decodeMethod(&body, rec); err != nil {
				return nil, err
			}
		}
	}

	g.used[g.wire] = true
	fmt.Fprintf(&g.buf, "// Code generated by wirectl gen; DO NOT EDIT.\n\n")
	fmt.Fprintf(&g.buf, "package %s\n\n", file.Name.Name)
	g.writeImports()
	g.buf.Write(body.Bytes())

	out, err := format.Source(g.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("wiregen: format output: %w", err)
	}
	return out, nil
}

func collectRecords(file *ast.File, names []string) ([]record, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}

	var out []record
	found := make(map[string]bool)
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			selected := want[ts.Name.Name]
			if len(want) == 0 {
				selected = hasDirective(gen.Doc) || hasDirective(ts.Doc)
			}
			if !selected {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				return nil, FieldError{Type: ts.Name.Name, Reason: "can only derive structs"}
			}
			if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
				return nil, FieldError{Type: ts.Name.Name, Reason: "cannot derive generic types"}
			}
			rec := record{name: ts.Name.Name}
			for _, f := range st.Fields.List {
				if len(f.Names) == 0 {
					return nil, FieldError{Type: rec.name, Field: types.ExprString(f.Type), Reason: "cannot derive unnamed field"}
				}
				for _, n := range f.Names {
					if n.Name == "_" {
						return nil, FieldError{Type: rec.name, Field: "_", Reason: "cannot derive blank field"}
					}
					rec.fields = append(rec.fields, field{name: n.Name, typ: f.Type})
				}
			}
			found[rec.name] = true
			out = append(out, rec)
		}
	}

	var missing []string
	for n := range want {
		if !found[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("wiregen: types not found: %s", strings.Join(missing, ", "))
	}
	if len(out) == 0 {
		return nil, ErrNoRecords
	}
	return out, nil
}

// importName returns the default package name for path, skipping a trailing
// major version element such as /v3.
func importName(path string) string {
	name := path[strings.LastIndex(path, "/")+1:]
	if isMajorVersion(name) && strings.Contains(path, "/") {
		path = path[:strings.LastIndex(path, "/")]
		name = path[strings.LastIndex(path, "/")+1:]
	}
	return name
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == RecordDirective {
			return true
		}
	}
	return false
}

func (g *generator) writeImports() {
	names := make([]string, 0, len(g.used))
	for n := range g.used {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return g.imports[names[i]] < g.imports[names[j]] })

	g.buf.WriteString("import (\n")
	for _, n := range names {
		path := g.imports[n]
		if importName(path) == n {
			fmt.Fprintf(&g.buf, "\t%q\n", path)
		} else {
			fmt.Fprintf(&g.buf, "\t%s %q\n", n, path)
		}
	}
	g.buf.WriteString(")\n\n")
}

func (g *generator) encodeMethod(out *bytes.Buffer, rec record) error {
	fmt.Fprintf(out, "func (m %s) EncodeTo(w *%s.Writer) {\n", rec.name, g.wire)
	for _, f := range rec.fields {
		stmt, err := g.encodeStmt(f.typ, "m."+f.name)
		if err != nil {
			return FieldError{Type: rec.name, Field: f.name, Reason: err.Error()}
		}
		fmt.Fprintf(out, "\t%s\n", stmt)
	}
	out.WriteString("}\n\n")
	return nil
}

func (g *generator) decodeMethod(out *bytes.Buffer, rec record) error {
	fmt.Fprintf(out, "func (m *%s) DecodeFrom(r *%s.Reader) error {\n", rec.name, g.wire)
	fmt.Fprintf(out, "\tvar out %s\n", rec.name)
	fmt.Fprintf(out, "\terr := %s.DecodeSteps(r, %q,\n", g.wire, rec.name)
	for _, f := range rec.fields {
		read, err := g.readFunc(f.typ)
		if err != nil {
			return FieldError{Type: rec.name, Field: f.name, Reason: err.Error()}
		}
		fmt.Fprintf(out, "\t\t%s.DecodeStep{Name: %q, Decode: func(r *%s.Reader) (err error) {\n", g.wire, f.name, g.wire)
		fmt.Fprintf(out, "\t\t\tout.%s, err = %s(r)\n", f.name, read)
		out.WriteString("\t\t\treturn err\n\t\t}},\n")
	}
	out.WriteString("\t)\n\tif err != nil {\n\t\treturn err\n\t}\n\t*m = out\n\treturn nil\n}\n\n")
	return nil
}

// primitives maps builtin type names to their Writer/Reader method suffix.
var primitives = map[string]string{
	"uint8":  "Uint8",
	"byte":   "Uint8",
	"uint16": "Uint16",
	"uint32": "Uint32",
	"uint64": "Uint64",
	"string": "String",
}

var rejected = map[string]bool{
	"bool": true, "int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uintptr": true, "rune": true, "float32": true, "float64": true,
	"complex64": true, "complex128": true, "any": true, "error": true,
}

// encodeStmt returns a statement appending value of type t to w.
func (g *generator) encodeStmt(t ast.Expr, value string) (string, error) {
	switch x := t.(type) {
	case *ast.Ident:
		if m, ok := primitives[x.Name]; ok {
			return fmt.Sprintf("w.Write%s(%s)", m, value), nil
		}
		if rejected[x.Name] {
			return "", fmt.Errorf("unsupported type %s", x.Name)
		}
		return fmt.Sprintf("%s.EncodeTo(w)", value), nil
	case *ast.SelectorExpr:
		if err := g.useSelector(x); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.EncodeTo(w)", value), nil
	case *ast.ArrayType:
		if x.Len != nil {
			return "", fmt.Errorf("unsupported fixed array %s", types.ExprString(x))
		}
		write, err := g.writeFunc(x.Elt)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.WriteSequenceFunc(w, %s, %s)", g.wire, value, write), nil
	default:
		return "", fmt.Errorf("unsupported type %s", types.ExprString(t))
	}
}

// writeFunc returns an expression of type func(*wire.Writer, T).
func (g *generator) writeFunc(t ast.Expr) (string, error) {
	typ := types.ExprString(t)
	if id, ok := t.(*ast.Ident); ok {
		if m, ok := primitives[id.Name]; ok {
			return fmt.Sprintf("(*%s.Writer).Write%s", g.wire, m), nil
		}
	}
	stmt, err := g.encodeStmt(t, "v")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("func(w *%s.Writer, v %s) { %s }", g.wire, typ, stmt), nil
}

// readFunc returns an expression of type func(*wire.Reader) (T, error).
func (g *generator) readFunc(t ast.Expr) (string, error) {
	typ := types.ExprString(t)
	switch x := t.(type) {
	case *ast.Ident:
		if m, ok := primitives[x.Name]; ok {
			return fmt.Sprintf("(*%s.Reader).Read%s", g.wire, m), nil
		}
		if rejected[x.Name] {
			return "", fmt.Errorf("unsupported type %s", x.Name)
		}
		return fmt.Sprintf("%s.DecodeFrom[%s]", g.wire, typ), nil
	case *ast.SelectorExpr:
		if err := g.useSelector(x); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.DecodeFrom[%s]", g.wire, typ), nil
	case *ast.ArrayType:
		if x.Len != nil {
			return "", fmt.Errorf("unsupported fixed array %s", typ)
		}
		elem, err := g.readFunc(x.Elt)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(
			"func(r *%s.Reader) (%s, error) { return %s.ReadSequenceFunc(r, %s) }",
			g.wire, typ, g.wire, elem,
		), nil
	default:
		return "", fmt.Errorf("unsupported type %s", typ)
	}
}

func (g *generator) useSelector(x *ast.SelectorExpr) error {
	pkg, ok := x.X.(*ast.Ident)
	if !ok {
		return fmt.Errorf("unsupported type %s", types.ExprString(x))
	}
	if _, ok := g.imports[pkg.Name]; !ok {
		return fmt.Errorf("unknown package %s", pkg.Name)
	}
	g.used[pkg.Name] = true
	return nil
}
