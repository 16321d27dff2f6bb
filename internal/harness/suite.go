package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Suite is a named sequence of cases run against one snapshot.
type Suite struct {
	// Name uniquely identifies this suite.
	Name string `yaml:"name" json:"name"`

	// Description explains what this suite validates.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Snapshot is an optional markup path. When loaded from a file it is
	// resolved relative to that file. The CLI's positional argument wins.
	Snapshot string `yaml:"snapshot,omitempty" json:"snapshot,omitempty"`

	// Cases run independently, each against its own parsed document.
	Cases []Case `yaml:"cases" json:"cases"`
}

// Case is an ordered list of checks against one document.
type Case struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Checks      []Check `yaml:"checks" json:"checks"`
}

// Check compares one observed value against an expected literal.
type Check struct {
	// Type selects the comparison (see the Check* constants).
	Type string `yaml:"type" json:"type"`

	// ID is the element identifier. Empty targets <body> for class checks.
	ID string `yaml:"id,omitempty" json:"id,omitempty"`

	// Property is the inline style property (style_equals).
	Property string `yaml:"property,omitempty" json:"property,omitempty"`

	// Attribute is the attribute name (attr_equals).
	Attribute string `yaml:"attribute,omitempty" json:"attribute,omitempty"`

	// Expect is the literal the observed value must equal.
	Expect string `yaml:"expect,omitempty" json:"expect,omitempty"`

	// Label overrides the generated description in reports.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Check type constants.
const (
	CheckPresent     = "present"
	CheckAbsent      = "absent"
	CheckClassEquals = "class_equals"
	CheckHasClass    = "has_class"
	CheckStyleEquals = "style_equals"
	CheckAttrEquals  = "attr_equals"
	CheckTextEquals  = "text_equals"
)

// CheckTypes lists every supported check type.
var CheckTypes = []string{
	CheckPresent,
	CheckAbsent,
	CheckClassEquals,
	CheckHasClass,
	CheckStyleEquals,
	CheckAttrEquals,
	CheckTextEquals,
}

// SuiteError reports a suite file that could not be loaded or is invalid.
type SuiteError struct {
	Path string
	Err  error
}

func (e *SuiteError) Error() string {
	return fmt.Sprintf("suite %s: %v", e.Path, e.Err)
}

func (e *SuiteError) Unwrap() error {
	return e.Err
}

// LoadSuite reads and validates a suite file. The format follows the
// extension: .yaml/.yml or .cue. YAML suites reject unknown fields (typos
// like "check:" instead of "checks:").
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SuiteError{Path: path, Err: fmt.Errorf("failed to read suite file: %w", err)}
	}

	var suite *Suite
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		suite, err = decodeYAML(data)
	case ".cue":
		suite, err = decodeCUE(path, data)
	default:
		err = fmt.Errorf("unsupported suite format %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
	if err != nil {
		return nil, &SuiteError{Path: path, Err: err}
	}

	if suite.Snapshot != "" && !filepath.IsAbs(suite.Snapshot) {
		suite.Snapshot = filepath.Join(filepath.Dir(path), suite.Snapshot)
	}

	if err := ValidateSuite(suite); err != nil {
		return nil, &SuiteError{Path: path, Err: fmt.Errorf("invalid suite: %w", err)}
	}
	return suite, nil
}

func decodeYAML(data []byte) (*Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &suite, nil
}

func decodeCUE(path string, data []byte) (*Suite, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE suite is not concrete: %w", err)
	}

	var suite Suite
	if err := value.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}
	return &suite, nil
}

// ValidateSuite checks that required fields are present and valid.
func ValidateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true

		if len(c.Checks) == 0 {
			return fmt.Errorf("cases[%d]: checks list is required and must be non-empty", i)
		}
		for j, chk := range c.Checks {
			if err := validateCheck(chk); err != nil {
				return fmt.Errorf("cases[%d].checks[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

// validateCheck validates a single check based on its type.
func validateCheck(c Check) error {
	if c.Type == "" {
		return fmt.Errorf("type is required")
	}

	switch c.Type {
	case CheckPresent, CheckAbsent, CheckTextEquals:
		if c.ID == "" {
			return fmt.Errorf("id is required for %s", c.Type)
		}
	case CheckClassEquals:
		// empty id targets <body>; empty expect asserts no class
	case CheckHasClass:
		if c.Expect == "" {
			return fmt.Errorf("expect is required for has_class")
		}
	case CheckStyleEquals:
		if c.ID == "" {
			return fmt.Errorf("id is required for style_equals")
		}
		if c.Property == "" {
			return fmt.Errorf("property is required for style_equals")
		}
	case CheckAttrEquals:
		if c.ID == "" {
			return fmt.Errorf("id is required for attr_equals")
		}
		if c.Attribute == "" {
			return fmt.Errorf("attribute is required for attr_equals")
		}
	default:
		return fmt.Errorf("unknown check type %q", c.Type)
	}
	return nil
}
