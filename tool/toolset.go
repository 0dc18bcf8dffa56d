package tool

import "fmt"

// Toolset is a named group of tools registered and swapped as a unit. Agents
// hold default toolsets; a run may add extra toolsets or override all of them.
type Toolset struct {
	name  string
	tools []Tool
}

// NewToolset creates a toolset from tools.
func NewToolset(name string, tools ...Tool) *Toolset {
	return &Toolset{name: name, tools: append([]Tool(nil), tools...)}
}

// Name returns the toolset name.
func (ts *Toolset) Name() string { return ts.name }

// Tools returns the tools in registration order.
func (ts *Toolset) Tools() []Tool { return append([]Tool(nil), ts.tools...) }

// Add appends tools to the set.
func (ts *Toolset) Add(tools ...Tool) { ts.tools = append(ts.tools, tools...) }

// Len returns the number of tools.
func (ts *Toolset) Len() int { return len(ts.tools) }

// Resolve flattens toolsets into registration order and rejects duplicate
// tool names across sets.
func Resolve(sets ...*Toolset) ([]Tool, error) {
	seen := map[string]string{}
	var out []Tool

	for _, ts := range sets {
		if ts == nil {
			continue
		}
		for _, t := range ts.tools {
			if prev, ok := seen[t.Name()]; ok {
				return nil, fmt.Errorf("duplicate tool %q in toolsets %q and %q", t.Name(), prev, ts.name)
			}
			seen[t.Name()] = ts.name
			out = append(out, t)
		}
	}

	return out, nil
}
