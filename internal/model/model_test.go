package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "", Truncate("hello", 0))
	// Multi-byte runes are never split.
	assert.Equal(t, "héé", Truncate("hééllo", 3))
}

func TestTitleFrom(t *testing.T) {
	long := strings.Repeat("a", 100)
	assert.Len(t, TitleFrom(long), TitleMaxRunes)
	assert.Equal(t, "short", TitleFrom("short"))
}

func TestConversation_Clone(t *testing.T) {
	orig := &Conversation{ID: "c1", Messages: []Entry{{Role: RoleUser, Content: "hi"}}}
	cp := orig.Clone()
	cp.Messages = append(cp.Messages, Entry{Role: RoleAssistant, Content: "hello"})
	cp.Messages[0].Content = "changed"

	assert.Len(t, orig.Messages, 1)
	assert.Equal(t, "hi", orig.Messages[0].Content)
	assert.Nil(t, (*Conversation)(nil).Clone())
}

func TestStreamEvent_Terminal(t *testing.T) {
	assert.False(t, StreamEvent{Type: EventDelta}.Terminal())
	assert.True(t, StreamEvent{Type: EventDone}.Terminal())
	assert.True(t, StreamEvent{Type: EventError}.Terminal())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleTool.Valid())
	assert.False(t, Role("robot").Valid())
}
