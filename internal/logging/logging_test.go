package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	w, err := NewFileWriter(dir)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, LogFileName)); err != nil {
		t.Errorf("log file not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("write test file left behind")
	}
}

func TestNewFileWriter_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileWriter(file); err == nil {
		t.Error("NewFileWriter accepted a regular file")
	}
}

func TestNew_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := New(&a, &b)
	logger.Info().Str("batch", "x").Msg("done")

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("%s writer got %q: %v", name, buf.String(), err)
		}
		if entry["batch"] != "x" || entry["message"] != "done" || entry["time"] == nil {
			t.Errorf("%s writer entry = %v", name, entry)
		}
	}
}

func TestInit_UsesLogsFolder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOGS_FOLDER", dir)
	if err := Init(true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("write test file left behind")
	}
}
