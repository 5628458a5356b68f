package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }
type pong struct{ S string }

func TestDispatchByType(t *testing.T) {
	b := New()
	var pings []int
	var pongs []string
	On(b, func(_ context.Context, p ping) { pings = append(pings, p.N) })
	On(b, func(_ context.Context, p pong) { pongs = append(pongs, p.S) })

	Emit(context.Background(), b, ping{N: 1})
	Emit(context.Background(), b, pong{S: "a"})
	Emit(context.Background(), b, ping{N: 2})

	require.Equal(t, []int{1, 2}, pings)
	require.Equal(t, []string{"a"}, pongs)
}

func TestUnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	b := New()
	var first, second int
	unsub := On(b, func(context.Context, ping) { first++ })
	On(b, func(context.Context, ping) { second++ })

	Emit(context.Background(), b, ping{})
	unsub()
	unsub()
	Emit(context.Background(), b, ping{})

	require.Equal(t, 1, first)
	require.Equal(t, 2, second)
}

func TestGlobalBus(t *testing.T) {
	Use(nil)
	Publish(context.Background(), ping{N: 1}) // no bus, no panic
	require.NotNil(t, Subscribe(func(context.Context, ping) {}))

	b := New()
	Use(b)
	defer Use(nil)

	var got []int
	unsub := Subscribe(func(_ context.Context, p ping) { got = append(got, p.N) })
	Publish(context.Background(), ping{N: 7})
	unsub()
	Publish(context.Background(), ping{N: 8})

	require.Equal(t, []int{7}, got)
}
