// Package template renders configured values (poller command arguments,
// notification fields) through Go text templates with the sprig function
// library. Values reference context keys as {{ .home }} and may use any
// sprig function, e.g. {{ env "USER" }} or {{ .branch | upper }}.
package template

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders template strings anywhere inside a value.
type Engine struct {
	funcs template.FuncMap
}

// New creates a template engine with the sprig function set.
func New() *Engine {
	return &Engine{funcs: sprig.TxtFuncMap()}
}

// Replace renders all template strings in a value against the context.
// Strings are rendered, maps and slices are walked recursively, and
// everything else passes through untouched. A reference to a context
// key that does not exist is an error.
func (e *Engine) Replace(value any, context map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		return e.renderString(v, context)
	case map[string]any:
		return e.replaceMap(v, context)
	case []any:
		return e.replaceSlice(v, context)
	case []string:
		return e.replaceStrings(v, context)
	default:
		return value, nil
	}
}

// renderString executes one string as a template. Strings without
// template markers skip parsing entirely.
func (e *Engine) renderString(value string, context map[string]any) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("value").Funcs(e.funcs).Option("missingkey=error").Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid template %q: %w", value, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return "", fmt.Errorf("failed to render %q: %w", value, err)
	}
	return buf.String(), nil
}

func (e *Engine) replaceMap(m map[string]any, context map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(m))
	for key, value := range m {
		replaced, err := e.Replace(value, context)
		if err != nil {
			return nil, fmt.Errorf("error in key %q: %w", key, err)
		}
		result[key] = replaced
	}
	return result, nil
}

func (e *Engine) replaceSlice(s []any, context map[string]any) ([]any, error) {
	result := make([]any, len(s))
	for i, value := range s {
		replaced, err := e.Replace(value, context)
		if err != nil {
			return nil, fmt.Errorf("error at index %d: %w", i, err)
		}
		result[i] = replaced
	}
	return result, nil
}

func (e *Engine) replaceStrings(s []string, context map[string]any) ([]string, error) {
	result := make([]string, len(s))
	for i, value := range s {
		replaced, err := e.renderString(value, context)
		if err != nil {
			return nil, fmt.Errorf("error at index %d: %w", i, err)
		}
		result[i] = replaced
	}
	return result, nil
}

// ExtractVariables returns the sorted context keys a value references.
// Unparsable strings contribute nothing; Replace will surface their
// errors.
func (e *Engine) ExtractVariables(value any) []string {
	variables := make(map[string]bool)
	e.extractRecursive(value, variables)

	result := make([]string, 0, len(variables))
	for name := range variables {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func (e *Engine) extractRecursive(value any, variables map[string]bool) {
	switch v := value.(type) {
	case string:
		if !strings.Contains(v, "{{") {
			return
		}
		tmpl, err := template.New("value").Funcs(e.funcs).Parse(v)
		if err != nil {
			return
		}
		collectFields(tmpl.Tree.Root, variables)
	case map[string]any:
		for _, item := range v {
			e.extractRecursive(item, variables)
		}
	case []any:
		for _, item := range v {
			e.extractRecursive(item, variables)
		}
	case []string:
		for _, item := range v {
			e.extractRecursive(item, variables)
		}
	}
}

// ValidateContext ensures every variable a value references is present
// in the context. Used at startup so misconfigured poller templates
// fail before the first tick.
func (e *Engine) ValidateContext(value any, context map[string]any) error {
	var missing []string
	for _, name := range e.ExtractVariables(value) {
		if _, exists := context[name]; !exists {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// collectFields walks a parse tree recording the root identifier of
// every field reference ({{ .foo.bar }} records "foo").
func collectFields(node parse.Node, out map[string]bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, item := range n.Nodes {
			collectFields(item, out)
		}
	case *parse.ActionNode:
		collectPipe(n.Pipe, out)
	case *parse.IfNode:
		collectBranch(&n.BranchNode, out)
	case *parse.RangeNode:
		collectBranch(&n.BranchNode, out)
	case *parse.WithNode:
		collectBranch(&n.BranchNode, out)
	case *parse.TemplateNode:
		collectPipe(n.Pipe, out)
	}
}

func collectBranch(branch *parse.BranchNode, out map[string]bool) {
	collectPipe(branch.Pipe, out)
	if branch.List != nil {
		collectFields(branch.List, out)
	}
	if branch.ElseList != nil {
		collectFields(branch.ElseList, out)
	}
}

func collectPipe(pipe *parse.PipeNode, out map[string]bool) {
	if pipe == nil {
		return
	}
	for _, cmd := range pipe.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.FieldNode:
				if len(a.Ident) > 0 {
					out[a.Ident[0]] = true
				}
			case *parse.ChainNode:
				if field, ok := a.Node.(*parse.FieldNode); ok && len(field.Ident) > 0 {
					out[field.Ident[0]] = true
				}
			case *parse.PipeNode:
				collectPipe(a, out)
			}
		}
	}
}
