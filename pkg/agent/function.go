package agent

import (
	"context"
	"encoding/json"
)

// FunctionSpec describes a function offered to the model.
type FunctionSpec struct {
	Name        string
	Description string
	// Parameters is a JSON schema object. Nil means the function takes no arguments.
	Parameters json.RawMessage
}

// Function is something the model can call while an agent is answering.
type Function interface {
	Spec() FunctionSpec
	Invoke(ctx context.Context, arguments json.RawMessage) (string, error)
}

// FuncFunction adapts a Go callback into a Function.
type FuncFunction struct {
	spec FunctionSpec
	fn   func(ctx context.Context, arguments json.RawMessage) (string, error)
}

// NewFunction builds a Function from its declaration and callback.
func NewFunction(name, description string, parameters json.RawMessage, fn func(ctx context.Context, arguments json.RawMessage) (string, error)) *FuncFunction {
	return &FuncFunction{
		spec: FunctionSpec{Name: name, Description: description, Parameters: parameters},
		fn:   fn,
	}
}

func (f *FuncFunction) Spec() FunctionSpec { return f.spec }

func (f *FuncFunction) Invoke(ctx context.Context, arguments json.RawMessage) (string, error) {
	return f.fn(ctx, arguments)
}

// Plugin groups related functions under a name. Function names are exposed
// to the model as "<plugin>-<function>".
type Plugin struct {
	Name      string
	Functions []Function
}

type pluginFunction struct {
	plugin string
	Function
}

func (p pluginFunction) Spec() FunctionSpec {
	spec := p.Function.Spec()
	spec.Name = p.plugin + "-" + spec.Name
	return spec
}
