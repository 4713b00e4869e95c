package templateutils

import (
	"bytes"
	"io/fs"
	"path"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
)

// MustTemplate parses the template at name in fsys with [Funcs] and the hermetic sprig functions. The template is
// named after the file's base name. It panics on error, so it is meant for package-level vars over embedded files.
func MustTemplate(fsys fs.FS, name string) *template.Template {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		panic(err)
	}
	t, err := template.New(path.Base(name)).
		Option("missingkey=error").
		Funcs(Funcs).
		Funcs(sprig.HermeticTxtFuncMap()).
		Parse(string(content))
	if err != nil {
		panic(err)
	}
	return t
}

// ExecuteBytes renders t with data.
func ExecuteBytes(t *template.Template, data any) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
