// Package mask keeps text fields holding Brazilian currency values in a valid
// display shape while exposing the canonical value for transport.
//
// A Form models the markup a page hands over: named fields grouped by the
// container they sit in. Masks are bound to fields explicitly with Attach or
// Init and driven by the host through Input, Blur and Submit calls.
package mask

import (
	"net/url"
	"strings"
)

const (
	TypeText   = "text"
	TypeHidden = "hidden"
)

// Field is a single form input.
type Field struct {
	Name    string
	Type    string
	Value   string
	Classes []string
	// Step mirrors the numeric step attribute; the price mask clears it.
	Step string

	form      *Form
	container string
}

// HasClass reports whether the field carries the given class marker.
func (f *Field) HasClass(class string) bool {
	for _, c := range f.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Class returns the class markers as an HTML class attribute value.
func (f *Field) Class() string {
	return strings.Join(f.Classes, " ")
}

// Form is the ordered set of fields submitted together.
type Form struct {
	fields   []*Field
	onSubmit []func()
}

func NewForm() *Form {
	return &Form{}
}

// Add places f inside the named container and returns it.
func (fm *Form) Add(container string, f *Field) *Field {
	if f.Type == "" {
		f.Type = TypeText
	}
	f.form = fm
	f.container = container
	fm.fields = append(fm.fields, f)
	return f
}

// Field returns the first field with the given name, or nil.
func (fm *Form) Field(name string) *Field {
	for _, f := range fm.fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Fields returns the fields in document order.
func (fm *Form) Fields() []*Field {
	return append([]*Field(nil), fm.fields...)
}

// Submit runs the registered submit hooks and returns what the browser would
// send: every named field, in document order.
func (fm *Form) Submit() url.Values {
	for _, hook := range fm.onSubmit {
		hook()
	}
	return fm.Values()
}

// Values returns the current field values without running submit hooks.
func (fm *Form) Values() url.Values {
	out := url.Values{}
	for _, f := range fm.fields {
		if f.Name == "" {
			continue
		}
		out.Add(f.Name, f.Value)
	}
	return out
}

func (fm *Form) addSubmitHook(hook func()) {
	fm.onSubmit = append(fm.onSubmit, hook)
}

// hiddenSibling returns the first hidden field sharing f's container.
func (fm *Form) hiddenSibling(f *Field) *Field {
	for _, other := range fm.fields {
		if other != f && other.container == f.container && other.Type == TypeHidden {
			return other
		}
	}
	return nil
}

// insertAfter places n right after f in document order and in f's container.
func (fm *Form) insertAfter(f, n *Field) {
	n.form = fm
	n.container = f.container
	for i, cur := range fm.fields {
		if cur == f {
			fm.fields = append(fm.fields[:i+1], append([]*Field{n}, fm.fields[i+1:]...)...)
			return
		}
	}
	fm.fields = append(fm.fields, n)
}
