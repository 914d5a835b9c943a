package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Lookup resolves a path in the form produced by Walk ("name",
// "structure.label", "items[1].label") to the member it names.
func Lookup(n *Node, path string) (Member, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	var (
		cur  = n
		last Member
		prev string
	)
	for _, seg := range strings.Split(path, ".") {
		if cur == nil {
			return nil, fmt.Errorf("%s: %q is not an object", path, prev)
		}
		prev = joinPath(prev, seg)
		prop, index, err := splitIndex(seg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m, ok := cur.Member(prop)
		if !ok {
			return nil, fmt.Errorf("%s: %s has no property %q", path, cur.entity.Name(), prop)
		}
		if index >= 0 {
			l, ok := m.(*List)
			if !ok {
				return nil, fmt.Errorf("%s: %q is not a list", path, prop)
			}
			if index >= l.Len() {
				return nil, fmt.Errorf("%s: index %d out of range (len %d)", path, index, l.Len())
			}
			m = l.At(index)
		}
		last = m
		cur, _ = m.(*Node)
	}
	return last, nil
}

// FieldAt resolves path to a field.
func FieldAt(n *Node, path string) (*Field, error) {
	m, err := Lookup(n, path)
	if err != nil {
		return nil, err
	}
	f, ok := m.(*Field)
	if !ok {
		return nil, fmt.Errorf("%s: not a field", path)
	}
	return f, nil
}

// ListAt resolves path to a list.
func ListAt(n *Node, path string) (*List, error) {
	m, err := Lookup(n, path)
	if err != nil {
		return nil, err
	}
	l, ok := m.(*List)
	if !ok {
		return nil, fmt.Errorf("%s: not a list", path)
	}
	return l, nil
}

// splitIndex splits "items[2]" into ("items", 2). Index is -1 without a
// subscript.
func splitIndex(seg string) (string, int, error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, -1, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return "", 0, fmt.Errorf("malformed segment %q", seg)
	}
	i, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil || i < 0 {
		return "", 0, fmt.Errorf("malformed index in %q", seg)
	}
	return seg[:open], i, nil
}
