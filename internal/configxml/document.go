// Package configxml edits Jenkins XML configuration documents (job, view,
// node and global config.xml) without losing the parts it does not touch.
package configxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	// ErrMalformedDocument is returned when input is not well-formed XML, or
	// when a Document was never produced by a successful Parse.
	ErrMalformedDocument = errors.New("malformed configuration document")

	// ErrMissingSection is returned when a document has no properties section.
	ErrMissingSection = errors.New("configuration document has no properties section")
)

// NodeKind identifies what a node in the document arena holds.
type NodeKind uint8

const (
	DocumentNode NodeKind = iota
	ElementNode
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

const noParent = -1

type node struct {
	kind     NodeKind
	name     string
	attrs    []xml.Attr
	data     string
	parent   int
	children []int
}

// Document is an editable tree of a configuration document. Nodes live in a
// single arena and refer to each other by index; index 0 is the document node.
// A Document belongs to one edit session and must not be shared.
type Document struct {
	prolog string
	nodes  []node
}

// xmlDecl matches a leading XML declaration. Jenkins writes version 1.1
// declarations, which encoding/xml refuses, so the declaration is cut off
// before decoding and written back verbatim.
var xmlDecl = regexp.MustCompile(`^\s*<\?xml\s[^?]*\?>`)

// Parse reads raw into a Document.
func Parse(raw string) (*Document, error) {
	prolog := xmlDecl.FindString(raw)
	body := raw[len(prolog):]
	prolog = strings.TrimLeft(prolog, " \t\r\n")

	doc := &Document{
		prolog: prolog,
		nodes:  []node{{kind: DocumentNode, parent: noParent}},
	}

	dec := xml.NewDecoder(strings.NewReader(body))
	dec.Strict = true

	stack := []int{0}
	roots := 0
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			if top == 0 {
				roots++
				if roots > 1 {
					return nil, fmt.Errorf("%w: more than one root element", ErrMalformedDocument)
				}
			}
			attrs := make([]xml.Attr, len(t.Attr))
			copy(attrs, t.Attr)
			idx := doc.appendNode(top, node{kind: ElementNode, name: qualified(t.Name), attrs: attrs})
			stack = append(stack, idx)
		case xml.EndElement:
			if top == 0 || doc.nodes[top].name != qualified(t.Name) {
				return nil, fmt.Errorf("%w: unexpected closing tag </%s>", ErrMalformedDocument, qualified(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if top == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, fmt.Errorf("%w: text outside the root element", ErrMalformedDocument)
				}
				continue
			}
			doc.appendNode(top, node{kind: TextNode, data: string(t)})
		case xml.Comment:
			doc.appendNode(top, node{kind: CommentNode, data: string(t)})
		case xml.ProcInst:
			doc.appendNode(top, node{kind: ProcInstNode, name: t.Target, data: string(t.Inst)})
		case xml.Directive:
			doc.appendNode(top, node{kind: DirectiveNode, data: string(t)})
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: unclosed element <%s>", ErrMalformedDocument, doc.nodes[stack[len(stack)-1]].name)
	}
	if roots == 0 {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}
	return doc, nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func (d *Document) valid() error {
	if d == nil || len(d.nodes) == 0 {
		return ErrMalformedDocument
	}
	return nil
}

func (d *Document) appendNode(parent int, n node) int {
	n.parent = parent
	d.nodes = append(d.nodes, n)
	idx := len(d.nodes) - 1
	d.nodes[parent].children = append(d.nodes[parent].children, idx)
	return idx
}

// newElement appends a fresh element under parent, optionally holding text.
func (d *Document) newElement(parent int, name, text string) int {
	idx := d.appendNode(parent, node{kind: ElementNode, name: name})
	if text != "" {
		d.appendNode(idx, node{kind: TextNode, data: text})
	}
	return idx
}

// detach unlinks idx from its parent. The node stays in the arena but is no
// longer reachable from the document node.
func (d *Document) detach(idx int) {
	parent := d.nodes[idx].parent
	if parent == noParent {
		return
	}
	kids := d.nodes[parent].children
	for i, c := range kids {
		if c == idx {
			d.nodes[parent].children = append(kids[:i:i], kids[i+1:]...)
			break
		}
	}
	d.nodes[idx].parent = noParent
}

// Root returns the name of the root element.
func (d *Document) Root() string {
	if d.valid() != nil {
		return ""
	}
	if idx := d.firstChildElement(0, ""); idx >= 0 {
		return d.nodes[idx].name
	}
	return ""
}

// elements returns every element named name under from, in document order.
func (d *Document) elements(from int, name string) []int {
	var out []int
	var walk func(int)
	walk = func(i int) {
		for _, c := range d.nodes[i].children {
			if d.nodes[c].kind != ElementNode {
				continue
			}
			if d.nodes[c].name == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(from)
	return out
}

// firstElement returns the first descendant of from named name, or -1.
func (d *Document) firstElement(from int, name string) int {
	for _, c := range d.nodes[from].children {
		if d.nodes[c].kind != ElementNode {
			continue
		}
		if d.nodes[c].name == name {
			return c
		}
		if found := d.firstElement(c, name); found >= 0 {
			return found
		}
	}
	return -1
}

// firstChildElement returns the first direct child element of parent named
// name, or any element when name is empty. Returns -1 if there is none.
func (d *Document) firstChildElement(parent int, name string) int {
	for _, c := range d.nodes[parent].children {
		if d.nodes[c].kind == ElementNode && (name == "" || d.nodes[c].name == name) {
			return c
		}
	}
	return -1
}

func (d *Document) text(idx int) string {
	var b strings.Builder
	var walk func(int)
	walk = func(i int) {
		for _, c := range d.nodes[i].children {
			switch d.nodes[c].kind {
			case TextNode:
				b.WriteString(d.nodes[c].data)
			case ElementNode:
				walk(c)
			}
		}
	}
	walk(idx)
	return b.String()
}

func (d *Document) setText(idx int, value string) {
	for _, c := range d.nodes[idx].children {
		d.nodes[c].parent = noParent
	}
	d.nodes[idx].children = nil
	if value != "" {
		d.appendNode(idx, node{kind: TextNode, data: value})
	}
}

// String renders the document back to text.
func (d *Document) String() (string, error) {
	if err := d.valid(); err != nil {
		return "", err
	}
	var b strings.Builder
	if d.prolog != "" {
		b.WriteString(d.prolog)
		b.WriteByte('\n')
	}
	prev := false
	for _, c := range d.nodes[0].children {
		if prev {
			b.WriteByte('\n')
		}
		d.write(&b, c)
		prev = true
	}
	return b.String(), nil
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;")
)

func (d *Document) write(b *strings.Builder, idx int) {
	n := d.nodes[idx]
	switch n.kind {
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.name)
		for _, a := range n.attrs {
			b.WriteByte(' ')
			b.WriteString(qualified(a.Name))
			b.WriteString(`="`)
			attrEscaper.WriteString(b, a.Value)
			b.WriteByte('"')
		}
		if len(n.children) == 0 {
			b.WriteString("/>")
			return
		}
		b.WriteByte('>')
		for _, c := range n.children {
			d.write(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.name)
		b.WriteByte('>')
	case TextNode:
		textEscaper.WriteString(b, n.data)
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.data)
		b.WriteString("-->")
	case ProcInstNode:
		b.WriteString("<?")
		b.WriteString(n.name)
		if n.data != "" {
			b.WriteByte(' ')
			b.WriteString(n.data)
		}
		b.WriteString("?>")
	case DirectiveNode:
		b.WriteString("<!")
		b.WriteString(n.data)
		b.WriteByte('>')
	}
}
