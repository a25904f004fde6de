package score

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/use-agent/pagepulse/models"
)

func TestLoadFile_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")

	// Only override the sections rule; everything else keeps defaults.
	override := `
sections:
  warn: 8
  bad: 12
  warnPoints: -20
  badPoints: -30
`
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	th, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if th.Sections.Warn != 8 || th.Sections.BadPoints != -30 {
		t.Errorf("sections override not applied: %+v", th.Sections)
	}
	if th.Images != Defaults().Images {
		t.Errorf("images rule changed unexpectedly: %+v", th.Images)
	}
	if th.Overall != Defaults().Overall {
		t.Errorf("overall bands changed unexpectedly: %+v", th.Overall)
	}

	// The overridden table changes scoring behaviour.
	counts := models.CensusCounts{Sections: models.Sections{Total: 10}}
	result := Evaluate(counts, th)
	if result.Overall.Score != 80 {
		t.Errorf("score with overridden thresholds = %d, want 80", result.Overall.Score)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("expected error for missing thresholds file")
	}
}
