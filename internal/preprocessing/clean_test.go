package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTextRemovesTags(t *testing.T) {
	assert.Equal(t, "Great taste!", CleanText("Great <b>taste</b>!"))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no tags", "Service was slow > expected", "Service was slow > expected"},
		{"self closing", "line<br/>break", "linebreak"},
		{"attributes", `<a href="http://x">link</a> text`, "link text"},
		{"non greedy", "<i>a</i> and <i>b</i>", "a and b"},
		{"unclosed", "a < b", "a < b"},
		{"nested brackets", "<<b>>", ">"},
		{"multiline tag kept", "<p\n>x", "<p\n>x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain review",
		"Great <b>taste</b>!",
		"a<b<c>d>e",
		"<<b>>",
		"<div><span>nested</span></div>",
		"x > y < z",
		"Hola, <em>cómo</em> estás?",
	}
	for _, in := range inputs {
		once := CleanText(in)
		assert.Equal(t, once, CleanText(once), "input %q", in)
	}
}
