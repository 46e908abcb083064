package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/vendor-file-processor/internal/ingest"
	"github.com/ginjaninja78/vendor-file-processor/internal/processor"
	"github.com/ginjaninja78/vendor-file-processor/internal/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(workers int) *Runner {
	registry := schema.Default()
	proc := processor.New(registry, ingest.New(registry, ingest.DefaultOptions()), zerolog.Nop())
	return New(proc, Options{MaxConcurrency: workers}, zerolog.Nop())
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestRunAggregatesInInputOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.csv":      "NDC,Name,Qty,Date\n1,A1,1,2024-01-01\n2,A2,2,2024-01-02\n",
		"b.pdf":      "%PDF",
		"c.csv":      "Item,DrugName\n3,C1\n",
		"kinray.csv": "NDC Number,Name,Qty,Date,Seller\n4,K1,4,2024-02-01,Kinray\n",
	})
	paths := []string{
		filepath.Join(dir, "kinray.csv"),
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "c.csv"),
	}

	s, err := newRunner(4).Run(context.Background(), paths)
	require.NoError(t, err)
	require.NotEmpty(t, s.RunID)

	assert.Equal(t, 3, s.Succeeded())
	assert.Equal(t, 4, s.Rows())

	var names []string
	for _, rec := range s.Combined() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"K1", "A1", "A2", "C1"}, names)

	assert.Equal(t, []string{
		"Processed: kinray.csv | Missing: None",
		"Processed: a.csv | Missing: None",
		"Unsupported file format: b.pdf",
		"Processed: c.csv | Missing: Qty, Date of Purchase",
	}, s.LogLines())

	header := s.MappingHeader()
	assert.Equal(t, "File", header[0])
	assert.Len(t, header, 12)

	rows := s.MappingRows()
	require.Len(t, rows, 3)
	assert.Equal(t, "kinray.csv", rows[0][0])
	assert.Equal(t, "NDC Number", rows[0][1])
	// Platform comes from the file name, so it never has a source column.
	assert.Equal(t, "", rows[0][8])
	assert.Equal(t, "Seller", rows[0][9])
	assert.Equal(t, "c.csv", rows[2][0])
	assert.Equal(t, "Item", rows[2][1])

	assert.Equal(t, []string{paths[0], paths[1], paths[3]}, s.SucceededPaths())
}

func TestRunOrderDoesNotDependOnWorkers(t *testing.T) {
	files := make(map[string]string)
	var paths []string
	dir := t.TempDir()
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("vendor%02d.csv", i)
		files[name] = fmt.Sprintf("NDC,Name,Qty,Date\n%d,row%d,1,2024-01-01\n", i, i)
		paths = append(paths, filepath.Join(dir, name))
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	sequential, err := newRunner(1).Run(context.Background(), paths)
	require.NoError(t, err)
	parallel, err := newRunner(8).Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, sequential.LogLines(), parallel.LogLines())
	assert.Equal(t, sequential.MappingRows(), parallel.MappingRows())
	assert.Equal(t, sequential.Combined(), parallel.Combined())
}

func TestRunNoValidData(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"x.pdf":  "%PDF",
		"y.csv":  "",
		"z.xlsx": "junk",
	})
	paths := []string{filepath.Join(dir, "x.pdf"), filepath.Join(dir, "y.csv"), filepath.Join(dir, "z.xlsx")}

	s, err := newRunner(2).Run(context.Background(), paths)
	require.ErrorIs(t, err, ErrNoValidData)
	require.NotNil(t, s)

	assert.Equal(t, 0, s.Succeeded())
	assert.Empty(t, s.Combined())
	assert.Empty(t, s.MappingRows())
	assert.Len(t, s.LogLines(), 3)
	assert.Equal(t, "Unsupported file format: x.pdf", s.LogLines()[0])
}

func TestRunEmpty(t *testing.T) {
	_, err := newRunner(2).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoValidData)
}

func TestRunCancelled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.csv": "NDC\n1\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := newRunner(1).Run(ctx, []string{filepath.Join(dir, "a.csv")})
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, context.Canceled))
}
