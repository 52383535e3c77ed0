package module

import (
	"bytes"
	"embed"
	"go/format"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/pkg/errors"

	"github.com/krew-solutions/quantum-go/quantum/dbal"
)

const (
	DefaultTemplate = "default"
	templateExt     = ".tmpl"
)

var (
	ErrInvalidName     = errors.New("invalid module name")
	ErrUnknownTemplate = errors.New("unknown module template")
	ErrModuleExists    = errors.New("module already exists")
)

//go:embed all:templates
var embedded embed.FS

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

type Options struct {
	Name     string
	Template string
	// Dir is the directory modules live in; the module is written to
	// Dir/<package>.
	Dir   string
	Force bool
	// ImportPath is the Go import path of Dir. Defaults to Dir with forward
	// slashes.
	ImportPath string
}

// Data is what templates are executed with.
type Data struct {
	Name       string
	Package    string
	Type       string
	Table      string
	ImportPath string
}

// Generator renders module scaffolds from a tree of templates, one top level
// directory per template.
type Generator struct {
	templates fs.FS
}

// NewGenerator uses the templates built into the binary.
func NewGenerator() *Generator {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return &Generator{templates: sub}
}

func NewGeneratorFS(templates fs.FS) *Generator {
	return &Generator{templates: templates}
}

// Templates lists the available template names.
func (g *Generator) Templates() ([]string, error) {
	entries, err := fs.ReadDir(g.templates, ".")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Generate writes the module and returns the written file paths in lexical
// order. Every file is rendered before anything is written, so a template
// error leaves the disk untouched.
func (g *Generator) Generate(opts Options) ([]string, error) {
	data, err := newData(opts)
	if err != nil {
		return nil, err
	}
	tmplName := opts.Template
	if tmplName == "" {
		tmplName = DefaultTemplate
	}
	tmplFS, err := fs.Sub(g.templates, tmplName)
	if err != nil || !isDir(tmplFS) {
		return nil, errors.Wrap(ErrUnknownTemplate, tmplName)
	}

	target := filepath.Join(opts.Dir, data.Package)
	if _, err := os.Stat(target); err == nil && !opts.Force {
		return nil, errors.Wrap(ErrModuleExists, target)
	}

	rendered, err := render(tmplFS, data)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(rendered))
	for _, f := range rendered {
		dst := filepath.Join(target, filepath.FromSlash(f.path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return written, errors.WithStack(err)
		}
		if err := os.WriteFile(dst, f.content, 0o644); err != nil {
			return written, errors.WithStack(err)
		}
		written = append(written, dst)
	}
	return written, nil
}

type renderedFile struct {
	path    string
	content []byte
}

func render(tmplFS fs.FS, data Data) ([]renderedFile, error) {
	var files []renderedFile
	err := fs.WalkDir(tmplFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, templateExt) {
			return nil
		}
		src, err := fs.ReadFile(tmplFS, p)
		if err != nil {
			return err
		}
		tmpl, err := template.New(path.Base(p)).Option("missingkey=error").Parse(string(src))
		if err != nil {
			return errors.Wrapf(err, "parse %s", p)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return errors.Wrapf(err, "execute %s", p)
		}

		out := strings.TrimSuffix(p, templateExt)
		content := buf.Bytes()
		if strings.HasSuffix(out, ".go") {
			if content, err = format.Source(content); err != nil {
				return errors.Wrapf(err, "format %s", out)
			}
		}
		files = append(files, renderedFile{path: out, content: content})
		return nil
	})
	return files, errors.WithStack(err)
}

func newData(opts Options) (Data, error) {
	if !namePattern.MatchString(opts.Name) {
		return Data{}, errors.Wrapf(ErrInvalidName, "%q", opts.Name)
	}
	typeName := exportedName(opts.Name)
	pkg := strings.ToLower(typeName)
	importPath := opts.ImportPath
	if importPath == "" {
		importPath = filepath.ToSlash(filepath.Clean(opts.Dir))
	}
	return Data{
		Name:       opts.Name,
		Package:    pkg,
		Type:       typeName,
		Table:      dbal.TableName(typeName),
		ImportPath: path.Join(importPath, pkg),
	}, nil
}

// exportedName turns "blog_post", "blog-post" and "blogPost" into "BlogPost".
func exportedName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' || r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDir(fsys fs.FS) bool {
	info, err := fs.Stat(fsys, ".")
	return err == nil && info.IsDir()
}
