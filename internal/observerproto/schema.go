package observerproto

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemasErr  error
	subscribeS  *jsonschema.Schema
	tickS       *jsonschema.Schema
)

func compileSchemas() {
	compile := func(name string) (*jsonschema.Schema, error) {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		s, err := jsonschema.CompileString(name, string(b))
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		return s, nil
	}
	if subscribeS, schemasErr = compile("subscribe.schema.json"); schemasErr != nil {
		return
	}
	tickS, schemasErr = compile("tick.schema.json")
}

func validate(pick func() *jsonschema.Schema, raw []byte) error {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return schemasErr
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	return pick().Validate(doc)
}

// ValidateSubscribe checks a raw SUBSCRIBE message against its JSON schema.
func ValidateSubscribe(raw []byte) error {
	return validate(func() *jsonschema.Schema { return subscribeS }, raw)
}

// ValidateTick checks a raw TICK message against its JSON schema.
func ValidateTick(raw []byte) error {
	return validate(func() *jsonschema.Schema { return tickS }, raw)
}
