package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erraggy/oasgate/oaserrors"
)

// maxRefDepth bounds how many $ref hops are followed before a chain is
// treated as circular.
const maxRefDepth = 32

const localRefPrefix = "#/"

// Lookup resolves a local JSON pointer reference ("#/components/schemas/Pet")
// against the document's raw tree.
func (d *Document) Lookup(ref string) (any, bool) {
	if d == nil || !strings.HasPrefix(ref, localRefPrefix) {
		return nil, false
	}
	var current any = d.raw
	for _, token := range strings.Split(ref[len(localRefPrefix):], "/") {
		token = unescapePointerToken(token)
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// ResolveSchema follows a chain of local $refs and returns the target schema.
// Schemas without a $ref are returned unchanged. Unresolvable or circular
// chains return nil.
func (d *Document) ResolveSchema(s Schema) Schema {
	for depth := 0; s != nil; depth++ {
		ref := s.Ref()
		if ref == "" {
			return s
		}
		if depth >= maxRefDepth {
			return nil
		}
		target, ok := d.Lookup(ref)
		if !ok {
			return nil
		}
		s = AsSchema(target)
	}
	return nil
}

// RefName returns the last segment of a reference, which for component
// references is the component's name.
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return unescapePointerToken(ref[i+1:])
	}
	return ref
}

func unescapePointerToken(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	return strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
}

// resolveComponentRefs replaces $ref parameters and request bodies in path
// items and operations with the component they point to.
func (d *Document) resolveComponentRefs() error {
	for _, route := range d.PathTemplates() {
		item := d.Paths[route]
		if item == nil {
			continue
		}
		if err := d.resolveParameterList(item.Parameters); err != nil {
			return err
		}
		for _, op := range item.Operations() {
			if err := d.resolveParameterList(op.Parameters); err != nil {
				return err
			}
			if op.RequestBody != nil && op.RequestBody.Ref != "" {
				body, err := d.resolveRequestBody(op.RequestBody.Ref)
				if err != nil {
					return err
				}
				op.RequestBody = body
			}
		}
	}
	return nil
}

func (d *Document) resolveParameterList(params []*Parameter) error {
	for i, p := range params {
		if p == nil || p.Ref == "" {
			continue
		}
		resolved, err := d.resolveParameter(p.Ref)
		if err != nil {
			return err
		}
		params[i] = resolved
	}
	return nil
}

func (d *Document) resolveParameter(ref string) (*Parameter, error) {
	seen := make(map[string]bool)
	for {
		if seen[ref] {
			return nil, &oaserrors.ReferenceError{Ref: ref, IsCircular: true}
		}
		seen[ref] = true
		name, err := componentName(ref, "#/components/parameters/")
		if err != nil {
			return nil, err
		}
		var p *Parameter
		if d.Components != nil {
			p = d.Components.Parameters[name]
		}
		if p == nil {
			return nil, &oaserrors.ReferenceError{Ref: ref, Message: "parameter not found in components"}
		}
		if p.Ref == "" {
			return p, nil
		}
		ref = p.Ref
	}
}

func (d *Document) resolveRequestBody(ref string) (*RequestBody, error) {
	seen := make(map[string]bool)
	for {
		if seen[ref] {
			return nil, &oaserrors.ReferenceError{Ref: ref, IsCircular: true}
		}
		seen[ref] = true
		name, err := componentName(ref, "#/components/requestBodies/")
		if err != nil {
			return nil, err
		}
		var body *RequestBody
		if d.Components != nil {
			body = d.Components.RequestBodies[name]
		}
		if body == nil {
			return nil, &oaserrors.ReferenceError{Ref: ref, Message: "request body not found in components"}
		}
		if body.Ref == "" {
			return body, nil
		}
		ref = body.Ref
	}
}

func componentName(ref, prefix string) (string, error) {
	if !strings.HasPrefix(ref, prefix) {
		return "", &oaserrors.ReferenceError{
			Ref:     ref,
			Message: fmt.Sprintf("only local references under %s are supported", prefix),
		}
	}
	return unescapePointerToken(ref[len(prefix):]), nil
}
