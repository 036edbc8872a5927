package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBackupFile(t *testing.T) {
	tmpDir := t.TempDir()

	catalog := filepath.Join(tmpDir, "words.json")
	if err := os.WriteFile(catalog, []byte(`{"Gimel": []}`), 0644); err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}

	backup, err := BackupFile(catalog)
	if err != nil {
		t.Fatalf("BackupFile failed: %v", err)
	}

	// Original stays in place
	if _, err := os.Stat(catalog); err != nil {
		t.Errorf("Original file missing after backup: %v", err)
	}

	if filepath.Dir(backup) != filepath.Join(tmpDir, "archive") {
		t.Errorf("Expected backup inside archive directory, got %s", backup)
	}

	name := filepath.Base(backup)
	if !strings.HasPrefix(name, "words-") || !strings.HasSuffix(name, ".json") {
		t.Errorf("Backup name doesn't match expected pattern: %s", name)
	}

	content, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("Failed to read backup: %v", err)
	}
	if string(content) != `{"Gimel": []}` {
		t.Errorf("Backup content mismatch: %s", content)
	}
}

func TestBackupFileTwice(t *testing.T) {
	tmpDir := t.TempDir()
	catalog := filepath.Join(tmpDir, "images.json")
	if err := os.WriteFile(catalog, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}

	first, err := BackupFile(catalog)
	if err != nil {
		t.Fatalf("First backup failed: %v", err)
	}
	second, err := BackupFile(catalog)
	if err != nil {
		t.Fatalf("Second backup failed: %v", err)
	}

	if first == second {
		t.Errorf("Expected distinct backup names, got %s twice", first)
	}

	backups, err := List(catalog)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("Expected 2 backups, got %d", len(backups))
	}
}

func TestBackupFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := BackupFile(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	} else if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Unexpected error message: %v", err)
	}

	if _, err := BackupFile(tmpDir); err == nil {
		t.Error("Expected error for directory")
	}
}
