package ring

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"go-ringbridge/daw"
)

func TestSubscriptionGroupAddReplacesExisting(t *testing.T) {
	g := NewSubscriptionGroup()
	var torndown []string
	mk := func(tag string) daw.Unsubscribe {
		return func() error { torndown = append(torndown, tag); return nil }
	}

	g.Add("x", mk("first"))
	assert.Equal(t, g.Size(), 1)
	g.Add("x", mk("second"))
	assert.Equal(t, g.Size(), 1)
	assert.Equal(t, torndown, []string{"first"})
}

func TestSubscriptionGroupRemoveByPrefix(t *testing.T) {
	g := NewSubscriptionGroup()
	var torndown []string
	mk := func(tag string) daw.Unsubscribe {
		return func() error { torndown = append(torndown, tag); return nil }
	}

	g.Add("track:a:name", mk("a-name"))
	g.Add("track:a:color", mk("a-color"))
	g.Add("track:b:name", mk("b-name"))

	g.RemoveByPrefix("track:a:")

	assert.Equal(t, g.Size(), 1)
	assert.Equal(t, g.Has("track:b:name"), true)
	assert.Equal(t, g.Has("track:a:name"), false)
	assert.Equal(t, len(torndown), 2)
}

func TestSubscriptionGroupClear(t *testing.T) {
	g := NewSubscriptionGroup()
	for _, k := range []string{"a", "b", "c"} {
		g.Add(k, func() error { return nil })
	}
	assert.Equal(t, g.Size(), 3)
	g.Clear()
	assert.Equal(t, g.Size(), 0)
}

func TestSubscriptionGroupRemoveAbsentIsNoop(t *testing.T) {
	g := NewSubscriptionGroup()
	g.Remove("missing")
	assert.Equal(t, g.Size(), 0)
}
