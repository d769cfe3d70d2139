package event

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var inputSchema []byte

const inputSchemaURL = "eventdesk://schema/event-input.json"

// Validator checks event input against the event input JSON Schema.
// The core never calls it; presentation does, before create and update.
type Validator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewValidator creates a validator. The schema is compiled on first use.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate reports the first schema violation in in, or nil.
func (v *Validator) Validate(in Input) error {
	sch, err := v.schema()
	if err != nil {
		return fmt.Errorf("event: schema compilation error: %w", err)
	}

	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("event: marshal input: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("event: unmarshal input: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("event: invalid input: %w", err)
	}
	return nil
}

func (v *Validator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(inputSchema))
		if err != nil {
			v.err = fmt.Errorf("unmarshal schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(inputSchemaURL, doc); err != nil {
			v.err = fmt.Errorf("add schema resource: %w", err)
			return
		}

		v.compiled, v.err = c.Compile(inputSchemaURL)
	})
	return v.compiled, v.err
}
