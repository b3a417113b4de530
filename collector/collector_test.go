package collector

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dszqbsm/jobcrawler/value"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	nested := value.NewMap().With("a", value.NewMap().
		With("b", value.String("1")).
		With("c", value.String("2")))
	flat := Flatten(nested)
	want := value.NewMap().With("a-b", value.String("1")).With("a-c", value.String("2"))
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"a-b", "a-c"}, flat.Keys())

	// 已经展平的映射再次展平不变
	if diff := cmp.Diff(flat, Flatten(flat)); diff != "" {
		t.Errorf("Flatten() not idempotent (-want +got):\n%s", diff)
	}
}

func TestFlattenDeepAndLists(t *testing.T) {
	row := value.NewMap().
		With("title", value.String("Go")).
		With("tags", value.List{value.String("x"), value.String("y")}).
		With("meta", value.NewMap().With("dim", value.NewMap().With("w", value.String("3"))))
	assert.Equal(t, []string{"title", "tags-0", "tags-1", "meta-dim-w"}, Flatten(row).Keys())
}

func TestWriteCSV(t *testing.T) {
	rows := value.List{
		value.NewMap().
			With("title", value.String("Widget")).
			With("price", value.NewMap().With("amount", value.String("9.99")).With("cur", value.String("EUR"))),
		value.NewMap().
			With("title", value.String("Gizmo, large")).
			With("price", value.NewMap().With("amount", value.String("5")).With("cur", value.String("USD"))),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Equal(t, "title,price-amount,price-cur\nWidget,9.99,EUR\n\"Gizmo, large\",5,USD\n", buf.String())
}

func TestWriteCSVScalarRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, value.List{value.String("/a"), value.String("/b")}))
	assert.Equal(t, "value\n/a\n/b\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, value.List{}))
	assert.Empty(t, buf.String())

	assert.Error(t, WriteCSV(&buf, value.String("x")))
}

func TestWriteJSON(t *testing.T) {
	v := value.List{value.NewMap().With("z", value.String("1")).With("a", value.String("2"))}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, v))
	assert.Equal(t, "[\n    {\n        \"z\": \"1\",\n        \"a\": \"2\"\n    }\n]\n", buf.String())

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2", decoded[0]["a"])
}

func TestWriteJSONKeepsMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   value.Value
		want string
	}{
		{name: "ampersand in value",
			in:   value.List{value.NewMap().With("title", value.String("Tom & Jerry"))},
			want: "[\n    {\n        \"title\": \"Tom & Jerry\"\n    }\n]\n"},
		{name: "tags in key and value",
			in:   value.NewMap().With("<th>", value.String("<b>bold</b>")),
			want: "{\n    \"<th>\": \"<b>bold</b>\"\n}\n"},
		{name: "bare string", in: value.String("a > b"), want: "\"a > b\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteJSON(&buf, tt.in))
			assert.Equal(t, tt.want, buf.String())
			assert.NotContains(t, buf.String(), `\u00`)
		})
	}
}

func TestOpen(t *testing.T) {
	var stdout bytes.Buffer
	w, err := Open("", &stdout)
	require.NoError(t, err)
	_, _ = w.Write([]byte("x"))
	require.NoError(t, w.Close())
	assert.Equal(t, "x", stdout.String())

	path := filepath.Join(t.TempDir(), "out.csv")
	w, err = Open(path, &stdout)
	require.NoError(t, err)
	_, _ = w.Write([]byte("y"))
	require.NoError(t, w.Close())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "y", string(b))
}

func TestSelect(t *testing.T) {
	ctx := value.NewMap().With("books", value.List{
		value.NewMap().With("title", value.String("A")),
		value.NewMap().With("title", value.String("B")),
	})

	v, ok, err := Select(ctx, "books")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, v, 2)

	_, ok, err = Select(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err = Select(ctx, "$.books[*].title")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, value.Equal(value.List{value.String("A"), value.String("B")}, v))

	_, _, err = Select(ctx, "$.books[")
	assert.Error(t, err)
}
