package genconfig

import (
	"os"
	"testing"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	origDir, _ := os.Getwd()
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Logf("failed to restore directory: %v", err)
		}
	})
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"OutputDir", cfg.OutputDir, "internal/api"},
		{"PackageName", cfg.PackageName, "api"},
		{"TypesFile", cfg.TypesFile, "types.go"},
		{"ClientFile", cfg.ClientFile, "client.go"},
		{"ServerFile", cfg.ServerFile, "server.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("DefaultConfig().%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}

	if !cfg.HistoryEnabled {
		t.Error("DefaultConfig().HistoryEnabled = false, want true")
	}
}

func TestLoad_NoFile(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	want := DefaultConfig()
	if cfg != want {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoad_OapigenYaml(t *testing.T) {
	chdirTemp(t)

	content := `generate:
  output_dir: "custom/api"
  package_name: "myapi"
  base_url: "https://api.example.com"
  history_enabled: false
`
	if err := os.WriteFile("oapigen.yaml", []byte(content), 0644); err != nil {
		t.Fatalf("failed to write oapigen.yaml: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"OutputDir", cfg.OutputDir, "custom/api"},
		{"PackageName", cfg.PackageName, "myapi"},
		{"BaseURL", cfg.BaseURL, "https://api.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Load().%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}

	if cfg.HistoryEnabled {
		t.Error("Load().HistoryEnabled = true, want false")
	}
}

func TestLoad_DotOapigenYamlPriority(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile(".oapigen.yaml", []byte("generate:\n  package_name: \"from-dot\"\n"), 0644); err != nil {
		t.Fatalf("failed to write .oapigen.yaml: %v", err)
	}
	if err := os.WriteFile("oapigen.yaml", []byte("generate:\n  package_name: \"from-plain\"\n"), 0644); err != nil {
		t.Fatalf("failed to write oapigen.yaml: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.PackageName != "from-dot" {
		t.Errorf("PackageName = %q, want %q (should prefer .oapigen.yaml)", cfg.PackageName, "from-dot")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile(".oapigen.yaml", []byte("{{invalid yaml}}"), 0644); err != nil {
		t.Fatalf("failed to write .oapigen.yaml: %v", err)
	}

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want error for invalid YAML")
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("oapigen.yaml", []byte("generate:\n  package_name: \"onlythis\"\n"), 0644); err != nil {
		t.Fatalf("failed to write oapigen.yaml: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.PackageName != "onlythis" {
		t.Errorf("PackageName = %q, want %q", cfg.PackageName, "onlythis")
	}
	if cfg.OutputDir != "internal/api" {
		t.Errorf("OutputDir = %q, want default %q", cfg.OutputDir, "internal/api")
	}
}

func TestDetectModule(t *testing.T) {
	chdirTemp(t)

	goMod := "module github.com/example/myproject\n\ngo 1.25\n"
	if err := os.WriteFile("go.mod", []byte(goMod), 0644); err != nil {
		t.Fatalf("failed to write go.mod: %v", err)
	}

	mod, err := DetectModule()
	if err != nil {
		t.Fatalf("DetectModule() error = %v, want nil", err)
	}
	if mod != "github.com/example/myproject" {
		t.Errorf("DetectModule() = %q, want %q", mod, "github.com/example/myproject")
	}
}

func TestDetectModule_NoGoMod(t *testing.T) {
	chdirTemp(t)

	if _, err := DetectModule(); err == nil {
		t.Fatal("DetectModule() error = nil, want error when go.mod missing")
	}
}

func TestResolveModule_Provided(t *testing.T) {
	mod, err := ResolveModule("github.com/custom/mod")
	if err != nil {
		t.Fatalf("ResolveModule() error = %v", err)
	}
	if mod != "github.com/custom/mod" {
		t.Errorf("ResolveModule() = %q, want %q", mod, "github.com/custom/mod")
	}
}

func TestResolveModule_AutoDetect(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("go.mod", []byte("module github.com/auto/detected\n\ngo 1.25\n"), 0644); err != nil {
		t.Fatalf("failed to write go.mod: %v", err)
	}

	mod, err := ResolveModule("")
	if err != nil {
		t.Fatalf("ResolveModule() error = %v", err)
	}
	if mod != "github.com/auto/detected" {
		t.Errorf("ResolveModule() = %q, want %q", mod, "github.com/auto/detected")
	}
}
