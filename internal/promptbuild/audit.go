package promptbuild

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kayz/veoscene/internal/scene"
)

var auditMu sync.Mutex

// auditRecord never carries prompt text; only digests and sizes.
type auditRecord struct {
	Timestamp     string   `json:"timestamp"`
	RequestDigest string   `json:"request_digest"`
	PromptDigest  string   `json:"prompt_digest"`
	SceneType     string   `json:"scene_type"`
	Duration      int      `json:"duration_minutes"`
	HasBrand      bool     `json:"has_brand_references"`
	SystemLen     int      `json:"system_len"`
	UserLen       int      `json:"user_len"`
	Layers        []string `json:"layers"`
}

func (b *Builder) writeAuditRecord(cfg scene.Config, p Prompt, layers []Layer) error {
	return b.writeAuditRecordAt(time.Now(), cfg, p, layers)
}

func (b *Builder) writeAuditRecordAt(now time.Time, cfg scene.Config, p Prompt, layers []Layer) error {
	if !b.cfg.Enabled {
		return nil
	}

	auditDir := b.resolvePath(b.cfg.Dir)
	if err := os.MkdirAll(auditDir, 0755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	fileName := fmt.Sprintf("%s-%s.jsonl", b.prefix(), now.Format("2006-01-02"))
	filePath := filepath.Join(auditDir, fileName)

	record := auditRecord{
		Timestamp:     now.Format(time.RFC3339),
		RequestDigest: configDigest(cfg),
		PromptDigest:  promptDigest(p),
		SceneType:     string(cfg.SceneType),
		Duration:      int(cfg.Duration),
		HasBrand:      strings.TrimSpace(cfg.BrandReferences) != "",
		SystemLen:     len(p.System),
		UserLen:       len(p.User),
		Layers:        layerNames(layers),
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if err := appendJSONL(filePath, line); err != nil {
		return err
	}
	return b.cleanupOldAuditFilesWithNow(now)
}

func appendJSONL(filePath string, line []byte) error {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit file: %w", err)
	}
	return nil
}

// CleanupOldAuditFiles removes audit files older than the retention window.
// It returns the number of files removed.
func (b *Builder) CleanupOldAuditFiles() (int, error) {
	b.applyDefaults()
	auditMu.Lock()
	defer auditMu.Unlock()
	return b.cleanupCount(time.Now())
}

func (b *Builder) cleanupOldAuditFilesWithNow(now time.Time) error {
	_, err := b.cleanupCount(now)
	return err
}

func (b *Builder) cleanupCount(now time.Time) (int, error) {
	if !b.cfg.Enabled || b.cfg.RetentionDays <= 0 {
		return 0, nil
	}

	auditDir := b.resolvePath(b.cfg.Dir)
	entries, err := os.ReadDir(auditDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("list audit dir: %w", err)
	}

	prefix := b.prefix()
	cutoff := now.AddDate(0, 0, -b.cfg.RetentionDays)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix+"-") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		filePath := filepath.Join(auditDir, name)
		stale := false
		if fileDate, ok := parseAuditDate(name, prefix); ok {
			stale = fileDate.Before(startOfDay(cutoff))
		} else {
			info, err := entry.Info()
			if err != nil {
				return removed, fmt.Errorf("stat audit file %s: %w", filePath, err)
			}
			stale = info.ModTime().Before(cutoff)
		}
		if !stale {
			continue
		}
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove old audit file %s: %w", filePath, err)
		}
		removed++
	}
	return removed, nil
}

func (b *Builder) prefix() string {
	prefix := strings.TrimSpace(b.cfg.FilePrefix)
	if prefix == "" {
		return "promptbuild"
	}
	return prefix
}

func (b *Builder) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(b.cfg.RootDir, p)
}

func parseAuditDate(filename, prefix string) (time.Time, bool) {
	raw := strings.TrimSuffix(filename, ".jsonl")
	raw = strings.TrimPrefix(raw, prefix+"-")
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func layerNames(layers []Layer) []string {
	names := make([]string, 0, len(layers))
	for _, l := range layers {
		names = append(names, l.Name)
	}
	return names
}

func configDigest(cfg scene.Config) string {
	payload, _ := json.Marshal(cfg)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func promptDigest(p Prompt) string {
	h := sha256.New()
	h.Write([]byte(p.System))
	h.Write([]byte{0})
	h.Write([]byte(p.User))
	return hex.EncodeToString(h.Sum(nil))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
