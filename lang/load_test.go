package lang

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeFiles creates each named file under a fresh temp directory and
// returns the directory.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, src := range files {
		path := filepath.Join(dir, name)

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func TestLoad_SingleFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"cheffile": "build:\n  true\n",
	})

	file, err := Load(context.Background(), filepath.Join(dir, "cheffile"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if !filepath.IsAbs(file.Path) {
		t.Errorf("path %q is not absolute", file.Path)
	}

	if len(file.Recipes) != 1 || file.Recipes[0].Name != "build" {
		t.Errorf("recipes: got %+v, want one recipe named build", file.Recipes)
	}
}

func TestLoad_ImportsMerge(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"cheffile": "import 'lib.chef'\n\nbuild: helper\n  true\n",
		"lib.chef": "alias h := helper\n\nlib_root := \"x\"\n\nhelper:\n  true\n",
	})

	file, err := Load(context.Background(), filepath.Join(dir, "cheffile"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	names := make([]string, len(file.Recipes))
	for i, r := range file.Recipes {
		names[i] = r.Name
	}

	if len(names) != 2 || names[0] != "build" || names[1] != "helper" {
		t.Errorf("recipes: got %v, want [build helper]", names)
	}

	if len(file.Assignments) != 1 || file.Assignments[0].Name != "lib_root" {
		t.Errorf("assignments: got %+v, want lib_root", file.Assignments)
	}

	if len(file.Aliases) != 1 || file.Aliases[0].Name != "h" {
		t.Errorf("aliases: got %+v, want h", file.Aliases)
	}
}

func TestLoad_NestedRelativeImports(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"cheffile":      "import 'sub/lib.chef'\n\nbuild:\n  true\n",
		"sub/lib.chef":  "import 'more.chef'\n\nhelper:\n  true\n",
		"sub/more.chef": "extra:\n  true\n",
	})

	file, err := Load(context.Background(), filepath.Join(dir, "cheffile"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if len(file.Recipes) != 3 {
		t.Fatalf("recipes: got %d, want 3", len(file.Recipes))
	}
}

func TestLoad_SettingsFromRootOnly(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"cheffile": "import 'lib.chef'\n\nbuild:\n  true\n",
		"lib.chef": "set export\nset dotenv-load\n\nhelper:\n  true\n",
	})

	file, err := Load(context.Background(), filepath.Join(dir, "cheffile"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if file.Settings.ExportAll || file.Settings.DotenvLoad {
		t.Errorf("imported settings leaked into the root: %+v", file.Settings)
	}
}

func TestLoad_ImportCycle(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "self import",
			files: map[string]string{
				"cheffile": "import 'cheffile'\n",
			},
		},
		{
			name: "mutual import",
			files: map[string]string{
				"cheffile": "import 'a.chef'\n",
				"a.chef":   "import 'b.chef'\n",
				"b.chef":   "import 'a.chef'\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, tt.files)

			_, err := Load(context.Background(), filepath.Join(dir, "cheffile"))
			if err == nil {
				t.Fatal("expected error, got none")
			}

			if !errors.Is(err, ErrLoad) || !errors.Is(err, ErrImportCycle) {
				t.Errorf("error %v does not wrap ErrLoad and ErrImportCycle", err)
			}
		})
	}
}

func TestLoad_DuplicateAcrossFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"cheffile": "import 'lib.chef'\n\nbuild:\n  true\n",
		"lib.chef": "build:\n  false\n",
	})

	_, err := Load(context.Background(), filepath.Join(dir, "cheffile"))
	if err == nil {
		t.Fatal("expected error, got none")
	}

	if !errors.Is(err, ErrLoad) || !errors.Is(err, ErrDuplicateName) {
		t.Errorf("error %v does not wrap ErrLoad and ErrDuplicateName", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(),
		filepath.Join(t.TempDir(), "cheffile"))
	if err == nil {
		t.Fatal("expected error, got none")
	}

	if !errors.Is(err, ErrLoad) || !errors.Is(err, ErrReadInput) {
		t.Errorf("error %v does not wrap ErrLoad and ErrReadInput", err)
	}
}

func TestLoad_MissingImport(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"cheffile": "import 'absent.chef'\n",
	})

	_, err := Load(context.Background(), filepath.Join(dir, "cheffile"))
	if !errors.Is(err, ErrReadInput) {
		t.Fatalf("error %v does not wrap ErrReadInput", err)
	}
}
