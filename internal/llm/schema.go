package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const defaultMaxTokens = 1024

var compiled sync.Map // schema name -> *jsonschema.Schema

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}

// finish applies the checks shared by every provider: truncation first,
// then schema validation.
func finish(provider string, req Request, resp *Response) (*Response, error) {
	if resp.Truncated {
		return nil, &Error{Kind: KindTruncated, Provider: provider, Content: resp.Content}
	}
	if req.Schema == nil {
		return resp, nil
	}
	if err := Validate(req.Schema, resp.Content); err != nil {
		return nil, &Error{Kind: KindInvalid, Provider: provider, Content: resp.Content, Err: err}
	}
	return resp, nil
}

// Validate checks raw against s. Compiled schemas are cached by name.
func Validate(s *Schema, raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := compile(s)
	if err != nil {
		return err
	}
	return sch.Validate(doc)
}

func compile(s *Schema) (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(s.Name); ok {
		return v.(*jsonschema.Schema), nil
	}
	// Definitions may hold typed Go slices; normalise through JSON.
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", s.Name, err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", s.Name, err)
	}
	url := "mem://llm/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", s.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", s.Name, err)
	}
	compiled.Store(s.Name, sch)
	return sch, nil
}
