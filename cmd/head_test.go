package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hangxie/parquet-viewer/model"
)

func headStore(t *testing.T) *model.Store {
	t.Helper()
	store, err := model.NewStore([]model.Column{
		model.NewColumn("id", model.TypeInteger, []model.Value{
			model.Integer(1), model.Integer(2), model.Integer(3),
		}),
		model.NewColumn("name", model.TypeString, []model.Value{
			model.String("Anna"), model.Null(), model.String("Carl"),
		}),
		model.NewColumn("score", model.TypeFloat, []model.Value{
			model.Float(1.5), model.Float(2.5), model.Null(),
		}),
	}, 3)
	require.NoError(t, err)
	return store
}

func Test_WriteHead_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHead(&buf, headStore(t), 2, "csv"))

	expected := "id,name,score\n1,Anna,1.5\n2,,2.5\n"
	require.Equal(t, expected, buf.String())
}

func Test_WriteHead_CSV_RowCountClamped(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHead(&buf, headStore(t), 100, "csv"))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4) // header plus all three rows
}

func Test_WriteHead_JSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHead(&buf, headStore(t), 3, "jsonl"))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, float64(1), first["id"])
	require.Equal(t, "Anna", first["name"])
	require.Equal(t, 1.5, first["score"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.Nil(t, second["name"])

	var third map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))
	require.Nil(t, third["score"])
}

func Test_WriteHead_NegativeRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHead(&buf, headStore(t), -5, "csv"))
	require.Equal(t, "id,name,score\n", buf.String())
}
