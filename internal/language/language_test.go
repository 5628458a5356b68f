package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	doc, err := ParseQuery(`query Q($id: Int) { book(id: $id) { name } }`)
	require.NoError(t, err)
	require.Len(t, doc.Operations, 1)
	require.Equal(t, Query, doc.Operations[0].Operation)
	require.Equal(t, "Q", doc.Operations[0].Name)
}

func TestParseQuerySyntaxErrorHasLocation(t *testing.T) {
	_, err := ParseQuery(`{ book(id: 1) { name }`)
	require.Error(t, err)

	ge := AsError(err)
	require.NotEmpty(t, ge.Message)
	require.NotEmpty(t, ge.Locations)
}
