package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gostdlib/maybesync/prim/maybe/check"
	"github.com/kylelemons/godebug/pretty"
)

var testReports = []check.Report{
	{RunID: "id", Mode: "local", Check: "transcript", Workers: 1, Iterations: 1, Passed: true, Fingerprint: "00000000000000ff"},
	{RunID: "id", Mode: "local", Check: "exclusion", Workers: 1, Iterations: 10, Violations: 2, Detail: "overlap"},
}

func TestWriters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"CHECK", "transcript", "PASS", "fingerprint 00000000000000ff", "exclusion", "FAIL", "overlap"}},
		{"json", []string{`"run_id": "id"`, `"check": "exclusion"`, `"violations": 2`, `"fingerprint": "00000000000000ff"`}},
		{"csv", []string{"run_id,mode,check,workers,iterations,passed,violations,fingerprint,elapsed_ns,detail", "id,local,exclusion,1,10,false,2,,0,overlap"}},
		{"yaml", []string{"- run_id: id", "  check: transcript", "  passed: true", "  detail: overlap"}},
	}

	for _, test := range tests {
		buf := &bytes.Buffer{}
		if err := writers[test.format](buf, testReports); err != nil {
			t.Errorf("TestWriters(%s): got err == %s, want err == nil", test.format, err)
			continue
		}
		for _, w := range test.want {
			if !strings.Contains(buf.String(), w) {
				t.Errorf("TestWriters(%s): output missing %q:\n%s", test.format, w, buf.String())
			}
		}
	}
}

func TestJSONDecodes(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	if err := writeJSON(buf, testReports); err != nil {
		t.Fatal(err)
	}
	got := []check.Report{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("TestJSONDecodes: %s", err)
	}
	if diff := pretty.Compare(testReports, got); diff != "" {
		t.Errorf("TestJSONDecodes: -want/+got:\n%s", diff)
	}
}

func TestFormats(t *testing.T) {
	t.Parallel()

	want := []string{"csv", "json", "text", "yaml"}
	if diff := pretty.Compare(want, formats()); diff != "" {
		t.Errorf("TestFormats: -want/+got:\n%s", diff)
	}
}
