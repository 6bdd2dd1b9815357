// Package compass loads and validates the configurator catalog: the five
// compass dimensions with their option lists and the course module catalog.
package compass

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"compass-backend/internal/scoring"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog is the typed configuration document consumed by the scoring and
// recommendation code. Page content outside compass/modules is carried
// through untouched for the front end.
type Catalog struct {
	Compass Section        `yaml:"compass" json:"compass" validate:"required"`
	Modules ModuleSection  `yaml:"modules" json:"modules"`
	Page    map[string]any `yaml:",inline" json:"-"`
}

// Section describes the compass configurator.
type Section struct {
	Title      string      `yaml:"title,omitempty" json:"title,omitempty"`
	Subtitle   string      `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Dimensions []Dimension `yaml:"dimensions" json:"dimensions" validate:"len=5,dive"`
}

// Dimension is one compass input with its closed option list.
type Dimension struct {
	ID      string   `yaml:"id" json:"id" validate:"required"`
	Title   string   `yaml:"title" json:"title" validate:"required"`
	Desc    string   `yaml:"desc,omitempty" json:"desc,omitempty"`
	Options []Option `yaml:"options" json:"options" validate:"min=1,dive"`

	canonical scoring.Dimension
}

// Canonical returns the scoring dimension the id resolves to.
func (d Dimension) Canonical() scoring.Dimension {
	return d.canonical
}

// Option is one selectable value of a dimension.
type Option struct {
	Value   string `yaml:"value" json:"value" validate:"required"`
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
	Tooltip string `yaml:"tooltip,omitempty" json:"tooltip,omitempty"`
}

// DisplayLabel falls back to the value when no label is configured.
func (o Option) DisplayLabel() string {
	if strings.TrimSpace(o.Label) != "" {
		return o.Label
	}
	return o.Value
}

// ModuleSection holds the course modules and their category filters.
type ModuleSection struct {
	Title    string   `yaml:"title,omitempty" json:"title,omitempty"`
	Subtitle string   `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Filters  []Filter `yaml:"filters,omitempty" json:"filters,omitempty" validate:"dive"`
	List     []Module `yaml:"list" json:"list" validate:"dive"`
}

// Filter is a category tab over the module list.
type Filter struct {
	ID    string `yaml:"id" json:"id" validate:"required"`
	Label string `yaml:"label" json:"label" validate:"required"`
}

// Module is one entry of the course catalog.
type Module struct {
	Title    string `yaml:"title" json:"title" validate:"required"`
	Category string `yaml:"category" json:"category" validate:"required"`
	Desc     string `yaml:"desc" json:"desc"`
	Details  string `yaml:"details,omitempty" json:"details,omitempty"`
}

// ModuleSummary is the projection of a module embedded in prompts.
type ModuleSummary struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Desc     string `json:"desc"`
}

// CategoryAll disables category filtering.
const CategoryAll = "all"

// ValidationError lists every problem found in a catalog.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single catalog problem at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("catalog validation failed:")
	for _, fe := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %s: %s;", fe.Field, fe.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

var validate = validator.New()

// Parse decodes a catalog from YAML or JSON and validates it. Unknown keys
// inside the compass and modules sections are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and parses the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func (c *Catalog) validate() error {
	var out []FieldError

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Namespace(), Message: describeTag(fe)})
		}
	}

	seen := make(map[scoring.Dimension]bool, len(scoring.Dimensions))
	for i := range c.Compass.Dimensions {
		d := &c.Compass.Dimensions[i]
		field := fmt.Sprintf("compass.dimensions[%d]", i)
		dim, err := scoring.ParseDimension(d.ID)
		if err != nil {
			out = append(out, FieldError{Field: field + ".id", Message: fmt.Sprintf("unknown dimension %q", d.ID)})
			continue
		}
		if seen[dim] {
			out = append(out, FieldError{Field: field + ".id", Message: fmt.Sprintf("duplicate dimension %q", dim)})
		}
		seen[dim] = true
		d.canonical = dim

		values := make(map[string]bool, len(d.Options))
		for j, opt := range d.Options {
			v := strings.TrimSpace(opt.Value)
			if v != "" && values[v] {
				out = append(out, FieldError{Field: fmt.Sprintf("%s.options[%d].value", field, j), Message: fmt.Sprintf("duplicate option %q", v)})
			}
			values[v] = true
		}
	}

	if len(out) > 0 {
		return &ValidationError{Errors: out}
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return "must contain exactly " + fe.Param() + " items"
	case "min":
		return "must contain at least " + fe.Param() + " items"
	default:
		return "failed " + fe.Tag()
	}
}

// Dimension returns the configured dimension for dim.
func (c *Catalog) Dimension(dim scoring.Dimension) (Dimension, bool) {
	for _, d := range c.Compass.Dimensions {
		if d.canonical == dim {
			return d, true
		}
	}
	return Dimension{}, false
}

// DimensionTitle returns the display title of dim, or its id when absent.
func (c *Catalog) DimensionTitle(dim scoring.Dimension) string {
	if d, ok := c.Dimension(dim); ok && strings.TrimSpace(d.Title) != "" {
		return d.Title
	}
	return string(dim)
}

// HasOption reports whether value is one of the configured options of dim.
func (c *Catalog) HasOption(dim scoring.Dimension, value string) bool {
	d, ok := c.Dimension(dim)
	if !ok {
		return false
	}
	for _, opt := range d.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// ModuleSummaries projects the module list, keeping only category when one
// is given.
func (c *Catalog) ModuleSummaries(category string) []ModuleSummary {
	category = strings.TrimSpace(category)
	out := make([]ModuleSummary, 0, len(c.Modules.List))
	for _, m := range c.Modules.List {
		if category != "" && category != CategoryAll && m.Category != category {
			continue
		}
		out = append(out, ModuleSummary{Title: m.Title, Category: m.Category, Desc: m.Desc})
	}
	return out
}

// MarshalJSON merges the passthrough page content with the typed sections.
func (c Catalog) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Page)+2)
	for k, v := range c.Page {
		out[k] = v
	}
	out["compass"] = c.Compass
	out["modules"] = c.Modules
	return json.Marshal(out)
}
