package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"richtag/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	// Name is source file name without extension
	Name string
	// Dir is source directory relative to the processed root, slash separated
	Dir    string
	Source string
	Ext    string
	Lang   string
	ID     string
}

func buildValues(name config.TemplateFieldName, src, id, ext, lang string) Values {
	dir := filepath.ToSlash(filepath.Dir(src))
	if dir == "." {
		dir = ""
	}
	base := filepath.Base(src)
	return Values{
		Context: string(name),
		Name:    strings.TrimSuffix(base, filepath.Ext(base)),
		Dir:     dir,
		Source:  base,
		Ext:     ext,
		Lang:    lang,
		ID:      id,
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
