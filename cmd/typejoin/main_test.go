package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/typejoin/pkg/conform"
	"github.com/vito/typejoin/pkg/ioctx"
	"github.com/vito/typejoin/pkg/universe"
	"gotest.tools/v3/golden"
)

func loadQueries(t *testing.T) (*universe.Universe, *universe.File) {
	t.Helper()
	u, file, err := universe.Load(filepath.Join("testdata", "queries.toml"))
	require.NoError(t, err)
	return u, file
}

func outputContext(stdout *bytes.Buffer) context.Context {
	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, stdout)
	ctx = ioctx.StderrToContext(ctx, &bytes.Buffer{})
	return ctx
}

func TestBatch(t *testing.T) {
	_, file := loadQueries(t)

	var stdout bytes.Buffer
	failed, err := runBatch(outputContext(&stdout), Config{Plain: true, Jobs: 4}, file)
	require.NoError(t, err)
	assert.Equal(t, 2, failed)

	golden.Assert(t, stdout.String(), "batch.golden")
}

func TestBatchSequential(t *testing.T) {
	_, file := loadQueries(t)

	var concurrent, sequential bytes.Buffer
	_, err := runBatch(outputContext(&concurrent), Config{Plain: true, Jobs: 8}, file)
	require.NoError(t, err)
	_, err = runBatch(outputContext(&sequential), Config{Plain: true, Jobs: 1}, file)
	require.NoError(t, err)
	assert.Equal(t, sequential.String(), concurrent.String())
}

func TestBatchCancelled(t *testing.T) {
	_, file := loadQueries(t)

	ctx, cancel := context.WithCancel(outputContext(&bytes.Buffer{}))
	cancel()
	_, err := runBatch(ctx, Config{Plain: true, Jobs: 1}, file)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateJoin(t *testing.T) {
	u, _ := loadQueries(t)
	c := conform.New()

	o := evaluate(c, u, universe.Query{Join: []string{"Integer", "Long"}, Expect: "Number & Comparable<?>"})
	require.NoError(t, o.Err)
	assert.True(t, o.Matched)
	assert.False(t, o.Failed())
	assert.Equal(t, "Number & Comparable<?>", o.Rendered)

	o = evaluate(c, u, universe.Query{Join: []string{"void", "Integer"}})
	require.NoError(t, o.Err)
	assert.Nil(t, o.Join)
	assert.Equal(t, undefined, o.Rendered)

	o = evaluate(c, u, universe.Query{Join: []string{"Integer"}, Expect: "Nope"})
	var unresolved universe.UnresolvedTypeError
	require.True(t, errors.As(o.Err, &unresolved), "%v", o.Err)
	assert.Equal(t, "Nope", unresolved.Name)
	assert.True(t, o.Failed())
}

func TestEvaluateConform(t *testing.T) {
	u, _ := loadQueries(t)
	c := conform.New()

	o := evaluate(c, u, universe.Query{Conform: []string{"Number", "int"}, Expect: "true"})
	require.NoError(t, o.Err)
	assert.Equal(t, conform.Boxing, o.Conformance)
	assert.True(t, o.Conformant)
	assert.NoError(t, o.Mismatch)
	assert.True(t, o.Matched)

	o = evaluate(c, u, universe.Query{Conform: []string{"Integer", "String"}})
	require.NoError(t, o.Err)
	assert.False(t, o.Conformant)
	assert.True(t, o.Matched, "no expectation always matches")
	var mismatch conform.ConformanceError
	require.True(t, errors.As(o.Mismatch, &mismatch))
	assert.Equal(t, "String is not conformant with Integer", o.Mismatch.Error())

	o = evaluate(c, u, universe.Query{Conform: []string{"Integer", "String"}, Expect: "maybe"})
	require.Error(t, o.Err)
	assert.Contains(t, o.Err.Error(), `expect must be true or false, got "maybe"`)

	o = evaluate(c, u, universe.Query{})
	require.Error(t, o.Err)
	assert.Contains(t, o.Err.Error(), "needs join or conform")
}

func TestReport(t *testing.T) {
	u, _ := loadQueries(t)
	o := evaluate(conform.New(), u, universe.Query{Join: []string{"Integer", "Long"}})
	require.NoError(t, o.Err)

	var stdout bytes.Buffer
	require.NoError(t, report(outputContext(&stdout), Config{Plain: true}, o))
	assert.Equal(t, "Number & Comparable<?>\n", stdout.String())

	stdout.Reset()
	require.NoError(t, report(outputContext(&stdout), Config{Plain: true, Dump: true}, o))
	assert.Contains(t, stdout.String(), `"intersection"`)
	assert.Contains(t, stdout.String(), `"lang.Number"`)
	assert.Contains(t, stdout.String(), `"wildcard"`)
}

func TestReportUndefinedDump(t *testing.T) {
	u, _ := loadQueries(t)
	o := evaluate(conform.New(), u, universe.Query{Join: []string{"void", "String"}})
	require.NoError(t, o.Err)

	var stdout bytes.Buffer
	require.NoError(t, report(outputContext(&stdout), Config{Plain: true, Dump: true}, o))
	assert.Equal(t, "undefined\nundefined\n", stdout.String())
}

func TestShape(t *testing.T) {
	u, _ := loadQueries(t)

	n := shape(u.MustParse("List<? extends Number>[]"))
	assert.Equal(t, node{
		Kind:       "array",
		Identifier: "util.List<? extends lang.Number>[]",
		Children: []node{{
			Kind:       "interface",
			Identifier: "util.List<? extends lang.Number>",
			Children: []node{{
				Kind:       "wildcard",
				Identifier: "? extends lang.Number",
				Children: []node{{
					Kind:       "class",
					Identifier: "lang.Number",
				}},
			}},
		}},
	}, n)
}
