package value

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapKeepsInsertionOrder(t *testing.T) {
	m := NewMap().With("b", String("1")).With("a", String("2")).With("c", String("3"))
	m.Set("b", String("4"))
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":"4","a":"2","c":"3"}`, string(b))
	assert.Less(t, strings.Index(string(b), `"b"`), strings.Index(string(b), `"a"`))
	assert.Less(t, strings.Index(string(b), `"a"`), strings.Index(string(b), `"c"`))
}

func TestNilMapIsEmpty(t *testing.T) {
	var m *Map
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Has("x"))
	_, ok := m.GetString("x")
	assert.False(t, ok)
}

func TestSorted(t *testing.T) {
	tests := []struct {
		name string
		in   List
		want List
	}{
		{name: "strings", in: List{String("pear"), String("apple"), String("fig")},
			want: List{String("apple"), String("fig"), String("pear")}},
		{name: "numbers", in: List{String("10"), String("9"), String("100")},
			want: List{String("9"), String("10"), String("100")}},
		{name: "numbers before words", in: List{String("10"), String("9"), String("1a"), String("b"), String("2"), String("a")},
			want: List{String("2"), String("9"), String("10"), String("1a"), String("a"), String("b")}},
		{name: "mixed kinds", in: List{NewMap(), List{}, String("z")},
			want: List{String("z"), List{}, NewMap()}},
		{name: "empty", in: List{}, want: List{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := append(List{}, tt.in...)
			got := Sorted(tt.in)
			assert.True(t, Equal(tt.want, got), "got %v", got)
			assert.True(t, Equal(Sorted(got), got), "sorting twice changed the order")
			assert.True(t, Equal(orig, tt.in), "input mutated")
		})
	}
}

func TestSortedMixedScalarsIsIdempotent(t *testing.T) {
	pool := []string{"10", "9", "1a", "2", "b", "100", "0x", "3.5", "a", "20"}
	rnd := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		l := make(List, 60)
		for i := range l {
			l[i] = String(pool[rnd.Intn(len(pool))])
		}
		once := Sorted(l)
		for i := 1; i < len(once); i++ {
			require.LessOrEqual(t, Compare(once[i-1], once[i]), 0, "trial %d: %v", trial, once)
		}
		require.True(t, Equal(once, Sorted(once)), "trial %d: sorting twice changed the order", trial)
	}
}

func TestMarshalJSONKeepsText(t *testing.T) {
	m := NewMap().
		With("Tom & Jerry", String("<b>cats & mice</b>")).
		With("list", List{String("a<b"), NewMap().With("q", String(`say "hi"`))})
	b, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"Tom & Jerry":"<b>cats & mice</b>","list":["a<b",{"q":"say \"hi\""}]}`, string(b))

	var nilMap *Map
	b, err = nilMap.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestNativeRoundTrip(t *testing.T) {
	m := NewMap().
		With("a", String("x")).
		With("b", List{String("1"), NewMap().With("c", String("2"))})
	assert.True(t, Equal(m, FromNative(Native(m))))
	assert.Equal(t, String("3"), FromNative(3))
	assert.Equal(t, String("true"), FromNative(true))
}
