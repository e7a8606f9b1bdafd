package structure

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"dirdump/pkg/walk"
)

func entries() []walk.Entry {
	return []walk.Entry{
		{Rel: "a.py", Name: "a.py"},
		{Rel: "lib", Name: "lib", IsDir: true},
		{Rel: "lib/x.py", Name: "x.py"},
		{Rel: "lib/y", Name: "y", IsDir: true},
		{Rel: "lib/y/z.py", Name: "z.py"},
		{Rel: "z.py", Name: "z.py"},
	}
}

func TestRender(t *testing.T) {
	tree := Build(slices.Values(entries()), nil, 0)

	want := "root/\n" +
		"├── a.py\n" +
		"├── lib/\n" +
		"│   ├── x.py\n" +
		"│   └── y/\n" +
		"│       └── z.py\n" +
		"└── z.py\n"
	assert.Equal(t, want, tree.Render("root"))
	assert.Equal(t, 6, tree.Entries())
	assert.False(t, tree.Truncated())
}

func TestRenderTruncated(t *testing.T) {
	tree := Build(slices.Values(entries()), nil, 2)

	assert.Equal(t, "root/\n├── a.py\n└── lib/\n"+TruncatedLine+"\n", tree.Render("root"))
	assert.True(t, tree.Truncated())
	assert.Equal(t, 2, tree.Entries())
}

func TestBuildKeep(t *testing.T) {
	keep := func(e walk.Entry) bool { return e.Rel != "lib" }

	tree := Build(slices.Values(entries()), keep, 0)

	// Children of a dropped directory have no parent to attach to.
	assert.Equal(t, "root/\n├── a.py\n└── z.py\n", tree.Render("root"))
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "root/\n", Tree{}.Render("root"))
}
