package main

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/speleo-data/cavetopo/internal/fsutil"
	"github.com/speleo-data/cavetopo/internal/testutil"
)

// emptyTopFile is a well-formed document containing no records.
func emptyTopFile() []byte {
	var buf bytes.Buffer
	buf.WriteString("Top")
	buf.WriteByte(0x03)
	for i := 0; i < 3; i++ { // trip, shot, reference counts
		binary.Write(&buf, binary.LittleEndian, uint32(0))
	}
	for i := 0; i < 3; i++ { // overview, outline, sideview mappings
		binary.Write(&buf, binary.LittleEndian, [3]int32{0, 0, 1000})
		if i > 0 {
			buf.WriteByte(0x00) // drawing terminator
		}
	}
	return buf.Bytes()
}

func TestRunSummary(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	testutil.AssertNoError(t, fs.WriteFile("cave.top", emptyTopFile(), 0o644))

	var out strings.Builder
	testutil.AssertNoError(t, run(fs, &out, "cave.top"))

	if !strings.Contains(out.String(), "shots:      0") {
		t.Errorf("summary missing shot count:\n%s", out.String())
	}
}

func TestRunMissingFile(t *testing.T) {
	var out strings.Builder
	testutil.AssertError(t, run(fsutil.NewMemoryFileSystem(), &out, "nope.top"))
}

func TestRunCorruptFile(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	testutil.AssertNoError(t, fs.WriteFile("bad.top", []byte("Txp"), 0o644))

	var out strings.Builder
	testutil.AssertError(t, run(fs, &out, "bad.top"))
}
