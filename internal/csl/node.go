// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csl

import (
	"encoding/xml"
	"strconv"
)

// Node is a rendering element (text, names, date, group, choose, ...)
// kept as a generic tree so the citation engine can walk it in document
// order.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []Node
}

// UnmarshalXML decodes an element and all of its descendants.
func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.Name = start.Name.Local
	if len(start.Attr) > 0 {
		n.Attrs = make(map[string]string, len(start.Attr))
		for _, a := range start.Attr {
			n.Attrs[a.Name.Local] = a.Value
		}
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var child Node
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			n.Text += string(t)
		case xml.EndElement:
			return nil
		}
	}
}

// Attr returns the named attribute or "".
func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

// IntAttr returns the named attribute as an integer, or def when it is
// absent or not a number.
func (n *Node) IntAttr(name string, def int) int {
	v, err := strconv.Atoi(n.Attrs[name])
	if err != nil {
		return def
	}
	return v
}

// Child returns the first child element with the given name.
func (n *Node) Child(name string) *Node {
	for i := range n.Children {
		if n.Children[i].Name == name {
			return &n.Children[i]
		}
	}
	return nil
}

// walk visits n and every descendant depth first.
func (n *Node) walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for i := range n.Children {
		if err := n.Children[i].walk(fn); err != nil {
			return err
		}
	}
	return nil
}
