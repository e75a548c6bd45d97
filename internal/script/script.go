// Package script parses and runs YAML scripts of tree operations.
package script

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Op names a script operation.
type Op string

// Supported operations.
const (
	OpInsert    Op = "insert"
	OpRemove    Op = "remove"
	OpContains  Op = "contains"
	OpInOrder   Op = "in_order"
	OpPreOrder  Op = "pre_order"
	OpPostOrder Op = "post_order"
	OpValidate  Op = "validate"
)

// Sentinel errors.
var (
	ErrSyntax        = errors.New("script is not valid YAML")
	ErrInvalidScript = errors.New("script does not match the schema")
	ErrExpectation   = errors.New("expect must be a boolean or a list of integers")
)

//go:embed schema.json
var schemaJSON []byte

//go:embed demo.yaml
var demoYAML []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Script is a named sequence of steps run against one tree.
type Script struct {
	Name string `yaml:"name"`
	// Capacity pre-sizes the tree arena. Zero defers to the runner options.
	Capacity int    `yaml:"capacity"`
	Steps    []Step `yaml:"steps"`
}

// Step is one operation. Insert, remove and contains take Value or Values.
type Step struct {
	Op     Op           `yaml:"op"`
	Value  *int         `yaml:"value"`
	Values []int        `yaml:"values"`
	Expect *Expectation `yaml:"expect"`
}

// Inputs returns the values the step operates on.
func (step Step) Inputs() []int {
	if step.Value != nil {
		return []int{*step.Value}
	}

	return step.Values
}

// Expectation is the expected result of a step: a boolean for insert, remove
// and contains, a value list for traversals.
type Expectation struct {
	Hit    *bool
	Values []int
}

// UnmarshalYAML decodes either a scalar boolean or a sequence of integers.
func (exp *Expectation) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var hit bool

		if err := node.Decode(&hit); err != nil {
			return fmt.Errorf("%w: %w", ErrExpectation, err)
		}

		exp.Hit = &hit
	case yaml.SequenceNode:
		values := []int{}

		if err := node.Decode(&values); err != nil {
			return fmt.Errorf("%w: %w", ErrExpectation, err)
		}

		exp.Values = values
	default:
		return fmt.Errorf("%w: line %d", ErrExpectation, node.Line)
	}

	return nil
}

// SchemaError lists every schema violation found in a script.
type SchemaError struct {
	Problems []string
}

func (se *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidScript, strings.Join(se.Problems, "; "))
}

func (se *SchemaError) Unwrap() error {
	return ErrInvalidScript
}

// Parse checks data against the script schema and decodes it.
func Parse(data []byte) (*Script, error) {
	var document any

	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	if err := Check(document); err != nil {
		return nil, err
	}

	var parsed Script

	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}

	return &parsed, nil
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return parsed, nil
}

// Check validates a decoded YAML document against the script schema. It
// returns a *SchemaError listing all violations.
func Check(document any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(document))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		problems = append(problems, resultErr.String())
	}

	return &SchemaError{Problems: problems}
}

// Default returns the built-in demo script.
func Default() *Script {
	parsed, err := Parse(demoYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded demo script is invalid: %v", err))
	}

	return parsed
}
