package eval

import (
	"github.com/npillmayer/ruleforge"
)

// List is the evaluator for a repetition, and for anchors accumulated over
// iterations. Its value is the list itself.
type List struct {
	anchor   string
	text     string
	elements []Evaluator
}

// Value returns the list.
func (l *List) Value() (interface{}, error) {
	return l, nil
}

// Anchor returns the anchor name the list is bound to, if any.
func (l *List) Anchor() string {
	return l.anchor
}

// Text returns the concatenated text of the list elements.
func (l *List) Text() string {
	return l.text
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.elements)
}

// At returns the value of the i-th element.
func (l *List) At(i int) (interface{}, error) {
	if i < 0 || i >= len(l.elements) {
		return nil, ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrCardinality,
			"index %d out of range for list of length %d", i, len(l.elements))
	}
	return l.elements[i].Value()
}

// Element returns the evaluator of the i-th element, or nil.
func (l *List) Element(i int) Evaluator {
	if i < 0 || i >= len(l.elements) {
		return nil
	}
	return l.elements[i]
}

// Values returns the values of all elements. Evaluation stops at the first
// error.
func (l *List) Values() ([]interface{}, error) {
	values := make([]interface{}, len(l.elements))
	for i, ev := range l.elements {
		v, err := ev.Value()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Named returns the elements carrying anchor name.
func (l *List) Named(name string) *List {
	named := &List{anchor: name}
	for _, ev := range l.elements {
		if ev.Anchor() == name {
			named.elements = append(named.elements, ev)
			named.text += ev.Text()
		}
	}
	return named
}

// Each calls f for every element value, until f returns an error.
func (l *List) Each(f func(i int, v interface{}) error) error {
	for i, ev := range l.elements {
		v, err := ev.Value()
		if err != nil {
			return err
		}
		if err = f(i, v); err != nil {
			return err
		}
	}
	return nil
}

// Peek is passed on to every element.
func (l *List) Peek(key interface{}) error {
	for _, ev := range l.elements {
		if err := ev.Peek(key); err != nil {
			return err
		}
	}
	return nil
}
