package ruleforge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestSpan(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge")
	defer teardown()
	//
	s := Span{2, 5}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "llo", s.Of("hello world"))
	assert.Equal(t, "", Span{4, 2}.Of("hello"))
	assert.Equal(t, "lo", Span{3, 99}.Of("hello"))
	assert.Equal(t, Span{1, 5}, s.Extend(Span{1, 3}))
	assert.True(t, Span{}.IsNull())
	assert.Equal(t, "(2…5)", s.String())
}

func TestLineCol(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge")
	defer teardown()
	//
	text := "ab\nçd\nx"
	for _, c := range []struct{ offset, line, col int }{
		{0, 1, 1}, {2, 1, 3}, {3, 2, 1}, {5, 2, 2}, {7, 3, 1}, {100, 3, 2},
	} {
		line, col := LineCol(text, c.offset)
		if line != c.line || col != c.col {
			t.Errorf("offset %d: expected %d:%d, have %d:%d", c.offset, c.line, c.col, line, col)
		}
	}
}

func TestError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge")
	defer teardown()
	//
	err := Errorf(Usage, ErrParseFailed, "no match for %s", "num").At("prog", "12\n3x", 4).For("num")
	assert.Equal(t, `prog:2:2: usage error in rule "num": parse failed: no match for num`, err.Error())
	assert.True(t, errors.Is(err, ErrParseFailed))
	wrapped := fmt.Errorf("evaluating: %w", err)
	assert.Equal(t, Usage, KindOf(wrapped))
	assert.Equal(t, NoErrorKind, KindOf(errors.New("other")))
	plain := Errorf(NotImplemented, nil, "later").At("", "", -1)
	assert.Equal(t, "not implemented: later", plain.Error())
	assert.Equal(t, -1, plain.Offset)
}
