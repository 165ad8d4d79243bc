package sarif

import (
	"encoding/json"
	"io"
)

const schemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"

// Builder constructs valid SARIF 2.1.0 documents with a single run.
type Builder struct {
	doc *Document
}

// NewBuilder creates a SARIF builder for the given tool.
func NewBuilder(toolName, toolVersion string) *Builder {
	return &Builder{
		doc: &Document{
			Version: "2.1.0",
			Schema:  schemaURI,
			Runs: []Run{{
				Tool:    Tool{Driver: Driver{Name: toolName, Version: toolVersion}},
				Results: []Result{},
			}},
		},
	}
}

func (b *Builder) run() *Run {
	return &b.doc.Runs[0]
}

// AddRule registers a rule on the driver. Registering the same ID twice is
// a no-op.
func (b *Builder) AddRule(id, description string) *Builder {
	d := &b.run().Tool.Driver
	for _, r := range d.Rules {
		if r.ID == id {
			return b
		}
	}
	d.Rules = append(d.Rules, Rule{ID: id, ShortDescription: Message{Text: description}})
	return b
}

// Add appends a fully formed result.
func (b *Builder) Add(r Result) *Builder {
	b.run().Results = append(b.run().Results, r)
	return b
}

// Document returns the constructed SARIF document.
func (b *Builder) Document() *Document {
	return b.doc
}

// WriteTo writes d as indented JSON to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	n, err := w.Write(data)
	return int64(n), err
}
