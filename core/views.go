package core

import (
	htmltmpl "html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ViewTemplates caches the parsed page templates by name (file name without ext).
// Every page is parsed along with `_base.gohtml` and executes the "base" template.
type ViewTemplates struct {
	pages map[string]*htmltmpl.Template
}

// ParseViewTemplates parses every `*.gohtml` page of dir in fsys, skipping partials prefixed with "_".
func ParseViewTemplates(fsys fs.FS, dir string, funcs htmltmpl.FuncMap, strict bool) (*ViewTemplates, error) {
	fps, err := fs.Glob(fsys, path.Join(dir, "*.gohtml"))
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}

	base := path.Join(dir, "_base.gohtml")
	vt := &ViewTemplates{pages: make(map[string]*htmltmpl.Template)}
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		name := strings.TrimSuffix(fname, path.Ext(fname))

		tmpl := htmltmpl.New(path.Base(base)).Funcs(funcs)
		if strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		if tmpl, err = tmpl.ParseFS(fsys, base, fp); err != nil {
			return nil, errors.Wrapf(err, "parsing template %s", name)
		}
		vt.pages[name] = tmpl
	}
	return vt, nil
}

// Render executes the named page with data.
func (vt *ViewTemplates) Render(w io.Writer, name string, data interface{}) error {
	tmpl, ok := vt.pages[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
