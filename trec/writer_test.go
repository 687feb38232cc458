package trec

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hqsearch/gip/model"
)

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "run1", nil)

	res := model.Result{
		QueryID: "q1",
		Docs: []model.ScoredDoc{
			{DocID: "d9", Score: 1.5, Rank: 1},
			{DocID: "d3", Score: 0.25, Rank: 2},
		},
	}
	require.NoError(t, w.WriteResult(context.Background(), res))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "q1 Q0 d9 1 1.5 run1", lines[0])
	assert.Equal(t, "q1 Q0 d3 2 0.25 run1", lines[1])
}

func TestWriteResultSkipsSelfHit(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "tag", nil)

	res := model.Result{
		QueryID: "42",
		Docs: []model.ScoredDoc{
			{DocID: "42", Score: 9, Rank: 1},
			{DocID: "7", Score: 5, Rank: 2},
		},
	}
	require.NoError(t, w.WriteResult(context.Background(), res))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	// The surviving row keeps its original rank.
	assert.Equal(t, "42 Q0 7 2 5 tag", lines[0])
}

func TestWriteAll(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "tag", nil)

	results := []model.Result{
		{QueryID: "a", Docs: []model.ScoredDoc{{DocID: "x", Score: 1, Rank: 1}}},
		{QueryID: "b", Docs: []model.ScoredDoc{{DocID: "y", Score: 2, Rank: 1}}},
	}
	require.NoError(t, w.WriteAll(context.Background(), results))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "a Q0 x"))
	assert.True(t, strings.HasPrefix(lines[1], "b Q0 y"))
}

func TestShardFileName(t *testing.T) {
	assert.Equal(t, "result.trec", ShardFileName(0, 1))
	assert.Equal(t, "result.trec", ShardFileName(0, 0))
	assert.Equal(t, "result0.trec", ShardFileName(0, 4))
	assert.Equal(t, "result3.trec", ShardFileName(3, 4))
}
