package school

import (
	_ "embed"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

type TemplateAssessment struct {
	Name        string  `json:"name" yaml:"name"`
	Weight      float64 `json:"weight" yaml:"weight"`
	Description string  `json:"description,omitempty" yaml:"description"`
}

type Template struct {
	Name        string               `json:"name" yaml:"name"`
	Assessments []TemplateAssessment `json:"assessments" yaml:"assessments"`
}

var templates = mustLoadTemplates(templatesYAML)

// LoadTemplates parses a YAML list of templates.
func LoadTemplates(data []byte) ([]Template, error) {
	var tmpls []Template
	if err := yaml.Unmarshal(data, &tmpls); err != nil {
		return nil, errors.Wrap(err, "parsing templates")
	}
	for _, t := range tmpls {
		if strings.TrimSpace(t.Name) == "" {
			return nil, errors.New("template without a name")
		}
		for _, a := range t.Assessments {
			if a.Weight < 0 || a.Weight > 100 {
				return nil, errors.Errorf("template %q: invalid weight %v for %q", t.Name, a.Weight, a.Name)
			}
		}
	}
	return tmpls, nil
}

func mustLoadTemplates(data []byte) []Template {
	tmpls, err := LoadTemplates(data)
	if err != nil {
		panic(err)
	}
	return tmpls
}

// Templates returns the built-in templates sorted by name.
func Templates() []Template {
	tmpls := append([]Template(nil), templates...)
	sort.Slice(tmpls, func(i, j int) bool { return tmpls[i].Name < tmpls[j].Name })
	return tmpls
}

// GetTemplate finds a built-in template by its (case-insensitive) name.
func GetTemplate(name string) (Template, error) {
	for _, t := range templates {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return Template{}, ErrTemplateNotFound
}
