// Package trec writes retrieval results in the TREC run format:
//
//	<query_id> Q0 <doc_id> <rank> <score> <run_tag>
//
// one line per retained (query, document) pair, descending score. A row
// whose doc id equals the query id (a self-hit) is omitted; ranks are
// not renumbered after the omission, matching the established behavior
// of downstream evaluation tooling.
package trec

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/hqsearch/gip/model"
	"github.com/hqsearch/gip/resource"
)

// Writer emits results as TREC run lines.
type Writer struct {
	w    *bufio.Writer
	tag  string
	ctrl *resource.Controller
}

// NewWriter creates a Writer tagging every line with runTag.
// ctrl may be nil; when set, output is paced by its IO limit.
func NewWriter(w io.Writer, runTag string, ctrl *resource.Controller) *Writer {
	return &Writer{
		w:    bufio.NewWriter(w),
		tag:  runTag,
		ctrl: ctrl,
	}
}

// WriteResult writes one query's ranked list, skipping self-hits.
func (w *Writer) WriteResult(ctx context.Context, res model.Result) error {
	for _, doc := range res.Docs {
		if doc.DocID == res.QueryID {
			// Self-hit: drop the row, keep the rank numbering.
			continue
		}

		line := fmt.Sprintf("%s Q0 %s %d %s %s\n",
			res.QueryID, doc.DocID, doc.Rank,
			strconv.FormatFloat(float64(doc.Score), 'g', -1, 32), w.tag)

		if err := w.ctrl.WaitIO(ctx, len(line)); err != nil {
			return err
		}
		if _, err := w.w.WriteString(line); err != nil {
			return err
		}
	}

	return nil
}

// WriteAll writes every result in order and flushes.
func (w *Writer) WriteAll(ctx context.Context, results []model.Result) error {
	for _, res := range results {
		if err := w.WriteResult(ctx, res); err != nil {
			return err
		}
	}

	return w.Flush()
}

// Flush flushes buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// ShardFileName returns the conventional output file name for a shard:
// "result.trec" for a single-shard run, "result<shard>.trec" otherwise.
func ShardFileName(shardIdx, totalShards int) string {
	if totalShards <= 1 {
		return "result.trec"
	}
	return fmt.Sprintf("result%d.trec", shardIdx)
}
