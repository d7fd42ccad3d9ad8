package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRoundTrip(t *testing.T) {
	in := []Entry{
		{Path: "/p/root", FileCount: 10, SizeBytes: 500, Kind: KindNormal},
		{Path: "/p/root/node_modules", FileCount: 4, SizeBytes: 300, Kind: KindTemporary},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, in))

	out, err := readCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadCSVHeaderByName(t *testing.T) {
	// Column order is free and extra columns are ignored.
	input := strings.Join([]string{
		"type,notes,size_bytes,path,files",
		"temp,hello,300,/p/node_modules,4",
	}, "\n")

	entries, err := readCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Path: "/p/node_modules", FileCount: 4, SizeBytes: 300, Kind: KindTemporary}, entries[0])
}

func TestReadCSVMissingColumn(t *testing.T) {
	input := "path,files,type\n/p,1,normal\n"
	_, err := readCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "size_bytes"`)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := readCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestReadCSVBadRows(t *testing.T) {
	header := "path,files,size_bytes,type\n"

	tests := []struct {
		name    string
		rows    string
		wantErr string
	}{
		{
			name:    "negative size",
			rows:    "/p,1,-5,normal\n",
			wantErr: "line 2",
		},
		{
			name:    "non-numeric files",
			rows:    "/p,many,5,normal\n",
			wantErr: "line 2",
		},
		{
			name:    "unknown type",
			rows:    "/p,1,5,junk\n",
			wantErr: `unrecognized type "junk"`,
		},
		{
			name:    "empty path",
			rows:    ",1,5,normal\n",
			wantErr: "empty path",
		},
		{
			name:    "duplicate path",
			rows:    "/p,1,5,normal\n/p,2,6,temp\n",
			wantErr: `line 3: duplicate path "/p"`,
		},
		{
			name:    "second row bad",
			rows:    "/a,1,5,normal\n/b,1,x,temp\n",
			wantErr: "line 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readCSV(strings.NewReader(header + tt.rows))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadCSVAllOrNothing(t *testing.T) {
	input := "path,files,size_bytes,type\n/a,1,5,normal\n/b,bad,5,temp\n"
	entries, err := readCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Nil(t, entries)
}

func TestCSVFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	in := []Entry{{Path: "/p/dist", FileCount: 2, SizeBytes: 200, Kind: KindTemporary}}

	require.NoError(t, writeCSVFile(path, in))
	out, err := readCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadCSVFileMissing(t *testing.T) {
	_, err := readCSVFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
