package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/credscan/internal/findings"
)

var sample = []findings.Finding{
	{FilePath: "config.py", MatchedString: "abc123", LineNumber: 5, FullLine: `password = "abc123"`},
	{FilePath: "deploy/values.yml", MatchedString: "xyz", LineNumber: 12, FullLine: `token: 'xyz'`},
	{FilePath: "a/b.env", MatchedString: "AKIA123", LineNumber: 1, FullLine: `api_key=AKIA123&region=eu`},
}

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")

	written, err := NewXLSXWriter(path, "").Write(sample)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	rows, err := ReadXLSX(path, DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(sample)+1)

	assert.Equal(t, findings.Header, rows[0])
	for i, f := range sample {
		row := rows[i+1]
		require.Len(t, row, 4)
		assert.Equal(t, f.FilePath, row[0])
		assert.Equal(t, f.MatchedString, row[1])
		assert.Equal(t, strconv.Itoa(f.LineNumber), row[2])
		assert.Equal(t, f.FullLine, row[3])
	}
}

func TestXLSXOverwritesExistingReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	w := NewXLSXWriter(path, "Creds")

	_, err := w.Write(sample)
	require.NoError(t, err)
	_, err = w.Write(sample[:1])
	require.NoError(t, err)

	rows, err := ReadXLSX(path, "Creds")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestXLSXDefaults(t *testing.T) {
	w := NewXLSXWriter("", "")
	assert.Equal(t, DefaultPath, w.Path)
	assert.Equal(t, DefaultSheet, w.Sheet)
}

func TestXLSXWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewXLSXWriter(filepath.Join(blocker, "report.xlsx"), "").Write(sample)
	assert.Error(t, err)
}

func TestSARIFWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.sarif")

	_, err := (&SARIFWriter{Path: path, ScanID: "scan-1"}).Write(sample)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Results []struct {
				RuleID    string `json:"ruleId"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(data, &log))

	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	require.Len(t, log.Runs[0].Results, len(sample))
	for i, f := range sample {
		res := log.Runs[0].Results[i]
		assert.Equal(t, RuleID, res.RuleID)
		require.Len(t, res.Locations, 1)
		assert.Equal(t, f.FilePath, res.Locations[0].PhysicalLocation.ArtifactLocation.URI)
		assert.Equal(t, f.LineNumber, res.Locations[0].PhysicalLocation.Region.StartLine)
	}
}
