package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const scenarioTSV = "Metric Radio\tInterval Dropdown\tgrapherId\n" +
	"Cases\tCumulative\t1\n" +
	"Cases\tWeekly\t2\n" +
	"Tests\tCumulative\n"

func TestParseTSV(t *testing.T) {
	grid, err := ParseTSV(strings.NewReader(scenarioTSV))
	require.NoError(t, err)
	require.Len(t, grid, 4)
	assert.Equal(t, []string{"Metric Radio", "Interval Dropdown", "grapherId"}, grid[0])
	assert.Equal(t, []string{"Tests", "Cumulative"}, grid[3])

	tbl := (&Document{Grid: grid}).Table()
	assert.Equal(t, 3, tbl.Len())
	row, ok := tbl.Row(2)
	require.True(t, ok)
	assert.Equal(t, "", row.Value("grapherId"))
}

func TestParseTSVKeepsQuotesAndBlanks(t *testing.T) {
	grid, err := ParseTSV(strings.NewReader("title\tnote\nSay \"hi\"\t\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Say \"hi\"", ""}, grid[1])
}

func TestParseEmptyGrid(t *testing.T) {
	_, err := Parse(strings.NewReader(""), FormatTSV, "")
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse(strings.NewReader("a"), Format("csv"), "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = DetectFormat("explorer.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDetectFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"covid.explorer": FormatTSV,
		"covid.tsv":      FormatTSV,
		"covid.XLSX":     FormatXLSX,
	} {
		got, err := DetectFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func workbook(t *testing.T, sheet string, rows [][]string) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}
	return f
}

func TestParseXLSX(t *testing.T) {
	rows := [][]string{
		{"Metric Radio", "Interval Radio"},
		{"Cases", "Weekly"},
		{"Tests", "Daily"},
	}
	f := workbook(t, "Sheet1", rows)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	grid, err := ParseXLSX(bytes.NewReader(buf.Bytes()), "")
	require.NoError(t, err)
	assert.Equal(t, rows, grid)
}

func TestLoadFileXLSXNamedSheet(t *testing.T) {
	rows := [][]string{{"Metric Radio"}, {"Deaths"}}
	f := workbook(t, "explorer", rows)
	path := filepath.Join(t.TempDir(), "covid.xlsx")
	require.NoError(t, f.SaveAs(path))

	doc, err := LoadFile(path, LoadOptions{Sheet: "explorer"})
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, doc.Format)
	assert.Equal(t, rows, doc.Grid)
	assert.NotEqual(t, uuid.Nil, doc.Version)

	_, err = LoadFile(path, LoadOptions{Sheet: "missing"})
	assert.Error(t, err)
}

func TestLoadFileAssignsNewVersions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covid.tsv")
	require.NoError(t, os.WriteFile(path, []byte(scenarioTSV), 0o644))

	first, err := LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	second, err := LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.Grid, second.Grid)
	assert.NotEqual(t, first.Version, second.Version)
	assert.Equal(t, path, first.Source)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.tsv"), LoadOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type fakeObjects struct {
	body  string
	err   error
	input *s3.GetObjectInput
}

func (f *fakeObjects) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestS3LoaderLoad(t *testing.T) {
	objects := &fakeObjects{body: scenarioTSV}
	loader, err := NewS3LoaderWithClient(S3Config{Bucket: "explorers", Key: "covid/covid.explorer"}, objects)
	require.NoError(t, err)

	doc, err := loader.Load(context.Background(), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "s3://explorers/covid/covid.explorer", doc.Source)
	assert.Len(t, doc.Grid, 4)
	assert.Equal(t, "explorers", aws.ToString(objects.input.Bucket))
	assert.Equal(t, "covid/covid.explorer", aws.ToString(objects.input.Key))
}

func TestS3LoaderErrors(t *testing.T) {
	_, err := NewS3LoaderWithClient(S3Config{Key: "a.tsv"}, &fakeObjects{})
	assert.Error(t, err)

	boom := errors.New("access denied")
	loader, err := NewS3LoaderWithClient(S3Config{Bucket: "b", Key: "a.tsv"}, &fakeObjects{err: boom})
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), LoadOptions{})
	assert.ErrorIs(t, err, boom)

	loader, err = NewS3LoaderWithClient(S3Config{Bucket: "b", Key: "a.tsv", MaxObjectBytes: 4}, &fakeObjects{body: scenarioTSV})
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), LoadOptions{})
	assert.ErrorContains(t, err, "exceeds")
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "covid.tsv")
	require.NoError(t, os.WriteFile(path, []byte(scenarioTSV), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docs := make(chan *Document, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(d *Document) { docs <- d })
	}()

	var first *Document
	select {
	case first = <-docs:
	case <-time.After(5 * time.Second):
		t.Fatal("initial load not delivered")
	}
	assert.Len(t, first.Grid, 4)

	updated := scenarioTSV + "Deaths\tCumulative\t3\n"
	tmp := filepath.Join(dir, "covid.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(updated), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case doc := <-docs:
			if len(doc.Grid) != 5 {
				continue
			}
			assert.NotEqual(t, first.Version, doc.Version)
			cancel()
			require.NoError(t, <-done)
			return
		case <-deadline:
			t.Fatal("reload not delivered")
		}
	}
}

func TestNewWatcherRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covid.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := NewWatcher(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewWatcher(filepath.Join(t.TempDir(), "missing.tsv"))
	assert.Error(t, err)
}
