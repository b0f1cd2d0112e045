package tree

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// Serialize renders t as a listing in the line layout of `tree -J`, followed by the report.
func Serialize(t *Tree) []byte {
	e := &encoder{}
	e.b.WriteString("[\n")
	e.writeDirectory(t.Directory, 1)
	e.b.WriteString("\n,\n  ")
	e.writeReport()
	e.b.WriteString("\n]\n")

	return e.b.Bytes()
}

// Encode writes the serialized form of t to w.
func Encode(w io.Writer, t *Tree) error {
	_, err := w.Write(Serialize(t))
	return err
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	return Serialize(t), nil
}

type encoder struct {
	b      bytes.Buffer
	report Report
}

func (e *encoder) writeNode(node Node, depth int) {
	switch it := node.(type) {
	case *Directory:
		e.report.Directories++
		e.writeDirectory(it, depth)
	case *File:
		e.report.Files++
		e.indent(depth)
		e.b.WriteString(`{"type":"file","name":`)
		e.quote(it.name)
		e.b.WriteString("}")
	}
}

func (e *encoder) writeDirectory(d *Directory, depth int) {
	e.indent(depth)
	e.b.WriteString(`{"type":"directory","name":`)
	e.quote(d.name)
	e.b.WriteString(`,"contents":[`)

	if len(d.children) == 0 {
		e.b.WriteString("]}")
		return
	}

	for i, child := range d.children {
		if i > 0 {
			e.b.WriteString(",")
		}
		e.b.WriteString("\n")
		e.writeNode(child, depth+1)
	}

	e.b.WriteString("\n")
	e.indent(depth)
	e.b.WriteString("]}")
}

func (e *encoder) writeReport() {
	report, _ := json.Marshal(struct {
		Type string `json:"type"`
		Report
	}{Type: typeReport, Report: e.report})

	e.b.Write(report)
}

func (e *encoder) indent(depth int) {
	e.b.WriteString(strings.Repeat("  ", depth))
}

func (e *encoder) quote(s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)

	e.b.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
