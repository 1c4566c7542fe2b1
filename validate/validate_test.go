package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/wricardo/stackquest/game/config"
)

const validManifest = `name: Test Pack
description: Two rooms
capacity: 2
speed: 0.2
levels:
  - 01.txt
  - 02.txt
`

func packFS(manifest string, levels map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{
		"test/pack.yaml": {Data: []byte(manifest)},
	}
	for name, data := range levels {
		fsys["test/"+name] = &fstest.MapFile{Data: []byte(data)}
	}
	return fsys
}

func hasError(result ValidationResult, substr string) bool {
	for _, err := range result.Errors {
		if strings.Contains(err, substr) {
			return true
		}
	}
	return false
}

func TestValidatePack_Valid(t *testing.T) {
	fsys := packFS(validManifest, map[string]string{
		"01.txt": "######\n#P.KD#\n######\n",
		"02.txt": "#####\n#P.S#\n#####\n",
	})

	result := validatePack(fsys, "test")
	if !result.Valid {
		t.Fatalf("Expected valid pack, but got errors: %v", result.Errors)
	}
	if result.Pack != "test" {
		t.Errorf("Expected pack test, got %s", result.Pack)
	}

	info := strings.Join(result.Info, "\n")
	for _, want := range []string{"✓ Name: Test Pack", "✓ Levels: 2", "✓ Backpack: 2", "1/1 doors reachable"} {
		if !strings.Contains(info, want) {
			t.Errorf("Expected info to contain %q, got:\n%s", want, info)
		}
	}
}

func TestValidatePack_Errors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		levels   map[string]string
		want     string
	}{
		{
			name:     "missing manifest",
			manifest: "",
			want:     "",
		},
		{
			name:     "bad yaml",
			manifest: "name: [unclosed",
			want:     "failed to parse pack manifest",
		},
		{
			name:     "invalid rules",
			manifest: "name: Fast\nspeed: 2\nlevels: [01.txt]\n",
			levels:   map[string]string{"01.txt": "###\n#P#\n###\n"},
			want:     "speed must be in (0, 1]",
		},
		{
			name:     "missing level file",
			manifest: validManifest,
			levels:   map[string]string{"01.txt": "######\n#P.KD#\n######\n"},
			want:     "Level 02.txt: failed to read",
		},
		{
			name:     "unknown character",
			manifest: validManifest,
			levels: map[string]string{
				"01.txt": "######\n#P.XD#\n######\n",
				"02.txt": "###\n#P#\n###\n",
			},
			want: "invalid character 'X' at position [2,4]",
		},
		{
			name:     "no spawn",
			manifest: validManifest,
			levels: map[string]string{
				"01.txt": "######\n#P.KD#\n######\n",
				"02.txt": "###\n#.#\n###\n",
			},
			want: "Level 02.txt: no spawn (P)",
		},
		{
			name:     "two spawns",
			manifest: validManifest,
			levels: map[string]string{
				"01.txt": "######\n#P.PD#\n######\n",
				"02.txt": "###\n#P#\n###\n",
			},
			want: "2 spawns (P), expected exactly one",
		},
		{
			name:     "non-final level without door",
			manifest: validManifest,
			levels: map[string]string{
				"01.txt": "######\n#P.K.#\n######\n",
				"02.txt": "###\n#P#\n###\n",
			},
			want: "Level 01.txt: no door (D)",
		},
		{
			name:     "door behind a wall",
			manifest: validManifest,
			levels: map[string]string{
				"01.txt": "######\n#P.#D#\n######\n",
				"02.txt": "###\n#P#\n###\n",
			},
			want: "Level 01.txt: no door reachable from spawn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			if tt.manifest != "" {
				fsys = packFS(tt.manifest, tt.levels)
			}

			result := validatePack(fsys, "test")
			if result.Valid {
				t.Fatal("Expected invalid pack")
			}
			if tt.want != "" && !hasError(result, tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, result.Errors)
			}
			if len(result.Info) != 0 {
				t.Errorf("Expected no info lines for an invalid pack, got %v", result.Info)
			}
		})
	}
}

func TestValidateLevel_CapsUnknownCharacters(t *testing.T) {
	result := ValidationResult{Valid: true}
	validateLevel(&result, "noise.txt", []byte("#P#\nxxxxxxxx\n###\n"), true)

	if result.Valid {
		t.Fatal("Expected invalid level")
	}
	if !hasError(result, "3 more invalid characters") {
		t.Errorf("Expected capped report, got %v", result.Errors)
	}
	if len(result.Errors) != maxReportedChars+1 {
		t.Errorf("Expected %d errors, got %d", maxReportedChars+1, len(result.Errors))
	}
}

func TestValidateLevel_HazardsDoNotBlockReachability(t *testing.T) {
	result := ValidationResult{Valid: true}
	validateLevel(&result, "hazards.txt", []byte("#########\n#P.M.F.D#\n#########\n"), false)

	if !result.Valid {
		t.Fatalf("Expected valid level, got %v", result.Errors)
	}
}

func TestBuiltinPacksAreValid(t *testing.T) {
	fsys := config.BuiltinPacks()
	ids, err := discoverPacks(fsys)
	if err != nil {
		t.Fatalf("discoverPacks failed: %v", err)
	}
	if len(ids) < 2 {
		t.Fatalf("Expected builtin packs, got %v", ids)
	}

	for _, id := range ids {
		if result := validatePack(fsys, id); !result.Valid {
			t.Errorf("Builtin pack %s is invalid: %v", id, result.Errors)
		}
	}
}

func TestDiscoverPacks(t *testing.T) {
	fsys := fstest.MapFS{
		"b/pack.yaml":     {Data: []byte(validManifest)},
		"a/pack.yaml":     {Data: []byte(validManifest)},
		"notes/readme.md": {Data: []byte("not a pack")},
		"loose.txt":       {Data: []byte("#P#")},
	}

	ids, err := discoverPacks(fsys)
	if err != nil {
		t.Fatalf("discoverPacks failed: %v", err)
	}
	if strings.Join(ids, ",") != "a,b" {
		t.Errorf("Expected [a b], got %v", ids)
	}
}

func writePack(t *testing.T, dir, id string, files map[string]string) {
	t.Helper()
	for name, data := range files {
		path := filepath.Join(dir, id, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCommand(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "good", map[string]string{
		"pack.yaml": validManifest,
		"01.txt":    "######\n#P.KD#\n######\n",
		"02.txt":    "###\n#P#\n###\n",
	})
	writePack(t, dir, "broken", map[string]string{
		"pack.yaml": validManifest,
		"01.txt":    "######\n#..KD#\n######\n",
		"02.txt":    "###\n#P#\n###\n",
	})

	t.Run("single valid pack", func(t *testing.T) {
		var out bytes.Buffer
		err := newCommand(&out).Run(context.Background(), []string{"validate", "--dir", dir, "good"})
		if err != nil {
			t.Fatalf("Expected success, got %v", err)
		}
		if !strings.Contains(out.String(), "✅ All packs are valid!") {
			t.Errorf("Unexpected output:\n%s", out.String())
		}
	})

	t.Run("all packs", func(t *testing.T) {
		var out bytes.Buffer
		err := newCommand(&out).Run(context.Background(), []string{"validate", "--dir", dir})
		if !errors.Is(err, errInvalidPacks) {
			t.Fatalf("Expected errInvalidPacks, got %v", err)
		}
		for _, want := range []string{"broken", "❌ INVALID", "good", "✅ VALID", "Level 01.txt: no spawn (P)"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("Expected output to contain %q, got:\n%s", want, out.String())
			}
		}
	})

	t.Run("builtin", func(t *testing.T) {
		var out bytes.Buffer
		if err := newCommand(&out).Run(context.Background(), []string{"validate", "--builtin"}); err != nil {
			t.Fatalf("Expected builtin packs to validate, got %v\n%s", err, out.String())
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		var out bytes.Buffer
		err := newCommand(&out).Run(context.Background(), []string{"validate", "--dir", filepath.Join(dir, "nope")})
		if err == nil {
			t.Fatal("Expected error for missing directory")
		}
	})
}
