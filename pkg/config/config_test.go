package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
)

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !kerrors.Is(err, kerrors.ErrCodeNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestLoadFromXDG(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	os.MkdirAll(filepath.Join(home, "kintree"), 0755)
	os.WriteFile(filepath.Join(home, "kintree", "kintree.toml"), []byte("[server]\naddr = \":9000\"\n"), 0644)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("unset keys should keep defaults, BaseURL = %q", cfg.Server.BaseURL)
	}
}

func TestDecodeOverrides(t *testing.T) {
	cfg := Default()
	err := Decode(strings.NewReader(`
[storage]
backend = "mongo"
mongo_uri = "mongodb://db:27017"

[cache]
backend = "redis"
redis_addr = "cache:6379"
redis_db = 2

[layout]
min_gap = 90

[presets]
M = ["/presets/custom.png"]
`), &cfg)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Storage.Backend != StorageMongo || cfg.Storage.MongoURI != "mongodb://db:27017" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.DataDir != "data" {
		t.Errorf("DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "cache:6379" || cfg.Cache.RedisDB != 2 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Layout.MinGap != 90 || cfg.Layout.RowSpacing != 140 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if diff := cmp.Diff([]string{"/presets/custom.png"}, cfg.Presets["M"]); diff != "" {
		t.Errorf("M presets (-want +got):\n%s", diff)
	}
	if len(cfg.Presets["F"]) != 5 {
		t.Errorf("F presets should keep defaults, got %v", cfg.Presets["F"])
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code kerrors.Code
	}{
		{"syntax", "[server\n", kerrors.ErrCodeInvalidFormat},
		{"unknown key", "[server]\nport = 1\n", kerrors.ErrCodeInvalidInput},
		{"bad storage", "[storage]\nbackend = \"s3\"\n", kerrors.ErrCodeInvalidInput},
		{"mongo without uri", "[storage]\nbackend = \"mongo\"\n", kerrors.ErrCodeInvalidInput},
		{"bad cache", "[cache]\nbackend = \"memcached\"\n", kerrors.ErrCodeInvalidInput},
		{"negative gap", "[layout]\nmin_gap = -1\n", kerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Decode(strings.NewReader(tt.in), &cfg)
			if !kerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	want := Default()
	want.Server.Addr = ":1234"

	var buf bytes.Buffer
	if err := Encode(want, &buf); err != nil {
		t.Fatal(err)
	}
	got := Default()
	if err := Decode(&buf, &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := CacheConfig{}.CacheDir()
	if err != nil || dir != filepath.Join("/tmp/xdg", "kintree") {
		t.Errorf("CacheDir = %q, %v", dir, err)
	}

	dir, _ = CacheConfig{Dir: "/var/cache/kt"}.CacheDir()
	if dir != "/var/cache/kt" {
		t.Errorf("explicit dir ignored: %q", dir)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	dir, err = CacheConfig{}.CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if dir != filepath.Join(home, ".cache", "kintree") {
		t.Errorf("CacheDir = %q", dir)
	}
}

func TestLoadExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "kintree.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"http://localhost:5173"}, cfg.Server.CORSOrigins); diff != "" {
		t.Errorf("cors_origins mismatch (-want +got):\n%s", diff)
	}
	if cfg.Cache.KeyPrefix != "kintree:" || cfg.Layout.MinGap != 120 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
