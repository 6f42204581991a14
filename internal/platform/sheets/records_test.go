package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePadsShortRows(t *testing.T) {
	table := Decode([][]string{
		{"id", "name", "total"},
		{"a1", "Ravi"},
		{"b2", "Meena", "-12.50"},
	})

	assert.Equal(t, []string{"id", "name", "total"}, table.Header)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, "", table.Rows[0]["total"])
	assert.Equal(t, "-12.50", table.Rows[1]["total"])
}

func TestDecodeEmptyGrid(t *testing.T) {
	table := Decode(nil)
	assert.Empty(t, table.Header)
	assert.Empty(t, table.Rows)
}

func TestEncodeFollowsHeaderOrder(t *testing.T) {
	values := Encode([]string{"name", "id"}, []Record{{"id": "a1", "name": "Ravi", "extra": "x"}})

	assert.Equal(t, [][]string{{"name", "id"}, {"Ravi", "a1"}}, values)
}
