// Package mindmap models the tree-shaped outline the AI gateway produces
// for a document. The gateway is only prompted to return this shape, so
// nothing about the payload can be trusted; Sanitize normalizes it.
package mindmap

import "encoding/json"

// Node is one node of a mind map: a label and its sub-topics.
type Node struct {
	Text     string  `json:"text"`
	Children []*Node `json:"children,omitempty"`
}

// Sanitize parses an untrusted JSON document into a Node tree. Malformed
// nodes (non-objects, missing or non-string text) are dropped rather than
// failing the whole tree. Returns nil when the root itself is unusable.
func Sanitize(raw json.RawMessage) *Node {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return sanitizeValue(value)
}

func sanitizeValue(value interface{}) *Node {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	text, ok := obj["text"].(string)
	if !ok {
		return nil
	}

	node := &Node{Text: text}
	children, ok := obj["children"].([]interface{})
	if !ok {
		return node
	}
	for _, child := range children {
		if c := sanitizeValue(child); c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}
