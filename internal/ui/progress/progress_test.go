package progress

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestBar_ReportBeforeStart(t *testing.T) {
	t.Parallel()

	b := NewBar(&bytes.Buffer{}, 3)
	b.Report(2, 3, "/tmp/repos/assignment-2")
	if b.Done() != 2 || b.Total() != 3 {
		t.Errorf("Done/Total = %d/%d, want 2/3", b.Done(), b.Total())
	}
}

func TestBar_StopBeforeStart(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	b := NewBar(&buf, 3)
	b.Stop()
	if buf.Len() != 0 {
		t.Errorf("Stop without Start wrote %q", buf.String())
	}
}

func TestSpinner_UpdateBeforeStart(t *testing.T) {
	t.Parallel()

	s := NewSpinner(&bytes.Buffer{}, "cloning")
	s.Update("cloning 3 repositories")
	if s.Message() != "cloning 3 repositories" {
		t.Errorf("Message() = %q", s.Message())
	}
	s.Stop()
}

func TestInteractive(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if Interactive(f) {
		t.Error("regular file reported as terminal")
	}
	if Interactive(nil) {
		t.Error("nil file reported as terminal")
	}
}
