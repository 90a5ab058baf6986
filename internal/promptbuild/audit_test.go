package promptbuild

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kayz/veoscene/internal/config"
	"github.com/kayz/veoscene/internal/scene"
)

func auditConfigForTest(root string) config.AuditConfig {
	return config.AuditConfig{
		Enabled:       true,
		RootDir:       root,
		Dir:           "audit",
		RetentionDays: 7,
		FilePrefix:    "promptbuild",
	}
}

func TestWriteAuditRecordAppendsSameDay(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(auditConfigForTest(dir))

	cfg := scene.SampleConfig
	cfg.BrandReferences = "Maison Aurel, limited edition"
	if _, err := b.Compose(cfg); err != nil {
		t.Fatalf("first compose: %v", err)
	}
	if _, err := b.Compose(cfg); err != nil {
		t.Fatalf("second compose: %v", err)
	}

	auditFile := filepath.Join(dir, "audit", "promptbuild-"+time.Now().Format("2006-01-02")+".jsonl")
	data, err := os.ReadFile(auditFile)
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d", len(lines))
	}

	var rec auditRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal first line: %v", err)
	}
	if rec.Timestamp == "" || rec.RequestDigest == "" || rec.PromptDigest == "" {
		t.Fatalf("expected timestamp and digests to be set")
	}
	if !rec.HasBrand || len(rec.Layers) != 5 {
		t.Fatalf("unexpected record %+v", rec)
	}
	var second auditRecord
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("unmarshal second line: %v", err)
	}
	if second.PromptDigest != rec.PromptDigest || second.RequestDigest != rec.RequestDigest {
		t.Fatalf("identical configs should produce identical digests")
	}
}

func TestAuditRecordOmitsPromptText(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(auditConfigForTest(dir))

	cfg := scene.SampleConfig
	cfg.BrandReferences = "secret-campaign-codename"
	p, err := b.Compose(cfg)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "audit", "promptbuild-"+time.Now().Format("2006-01-02")+".jsonl"))
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	for _, leak := range []string{"secret-campaign-codename", cfg.VisualMood, cfg.Location, "SCENE ARCHITECTURE"} {
		if strings.Contains(string(data), leak) {
			t.Fatalf("audit record leaked %q", leak)
		}
	}
	if !strings.Contains(p.User, "secret-campaign-codename") {
		t.Fatalf("brand references should still reach the prompt")
	}
}

func TestAuditDisabledWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := auditConfigForTest(dir)
	cfg.Enabled = false
	b := NewBuilder(cfg)

	if _, err := b.Compose(scene.SampleConfig); err != nil {
		t.Fatalf("compose: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "audit")); !os.IsNotExist(err) {
		t.Fatalf("audit dir should not be created when disabled")
	}
}

func TestCleanupOldAuditFilesByDateAndModTime(t *testing.T) {
	dir := t.TempDir()
	auditDir := filepath.Join(dir, "audit")
	if err := os.MkdirAll(auditDir, 0755); err != nil {
		t.Fatalf("mkdir audit dir: %v", err)
	}

	now := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	prefix := "promptbuild"

	oldByName := filepath.Join(auditDir, prefix+"-2026-02-18.jsonl")
	if err := os.WriteFile(oldByName, []byte("old"), 0644); err != nil {
		t.Fatalf("write old-by-name file: %v", err)
	}
	newByName := filepath.Join(auditDir, prefix+"-2026-02-26.jsonl")
	if err := os.WriteFile(newByName, []byte("new"), 0644); err != nil {
		t.Fatalf("write new-by-name file: %v", err)
	}
	fallbackOld := filepath.Join(auditDir, prefix+"-not-a-date.jsonl")
	if err := os.WriteFile(fallbackOld, []byte("fallback"), 0644); err != nil {
		t.Fatalf("write fallback file: %v", err)
	}
	oldModTime := now.AddDate(0, 0, -10)
	if err := os.Chtimes(fallbackOld, oldModTime, oldModTime); err != nil {
		t.Fatalf("set fallback old modtime: %v", err)
	}
	unrelated := filepath.Join(auditDir, "notes.txt")
	if err := os.WriteFile(unrelated, []byte("keep"), 0644); err != nil {
		t.Fatalf("write unrelated file: %v", err)
	}

	b := NewBuilder(auditConfigForTest(dir))
	removed, err := b.cleanupCount(now)
	if err != nil {
		t.Fatalf("cleanup old audit files: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed %d files, want 2", removed)
	}

	if _, err := os.Stat(oldByName); !os.IsNotExist(err) {
		t.Fatalf("expected old-by-name file removed")
	}
	if _, err := os.Stat(newByName); err != nil {
		t.Fatalf("expected new-by-name file kept: %v", err)
	}
	if _, err := os.Stat(fallbackOld); !os.IsNotExist(err) {
		t.Fatalf("expected fallback old-modtime file removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("expected unrelated file kept: %v", err)
	}
}
