package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/schematic-core/internal/auth"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

// writeConfig writes a minimal valid config with the database in a temp dir.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
database:
  path: "` + filepath.Join(tmpDir, "test.db") + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 18089
  timeouts:
    read: 5
    write: 5
    idle: 5

security:
  jwt:
    secret: "` + testSecret + `"
    access_token_ttl: 30
` + extra
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// execute runs the command tree with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, "/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingSecret verifies config validation stops startup.
func TestRun_MissingSecret(t *testing.T) {
	t.Setenv("SCHEMATIC_JWT_SECRET", "")
	configPath := writeFile(t, "config.yaml", "database:\n  path: \"x.db\"\n")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, configPath)
	if err == nil || !strings.Contains(err.Error(), "jwt.secret") {
		t.Fatalf("run() error = %v, want jwt secret validation error", err)
	}
}

// TestRun_StartupAndShutdown runs the full lifecycle with MQTT and InfluxDB
// disabled and stops it through context cancellation.
func TestRun_StartupAndShutdown(t *testing.T) {
	configPath := writeConfig(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx, configPath); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("SCHEMATIC_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("SCHEMATIC_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

func TestNetlistCheck(t *testing.T) {
	path := writeFile(t, "amp.net", "R;0,0;5,0;4.7e+3;R1\nR;5,0;5,5;1e+3;\n\nW;5,5;9,5;;\nG;9,5;9,5;;")

	out, err := execute(t, "", "netlist", "check", path)
	if err != nil {
		t.Fatalf("netlist check error = %v", err)
	}
	for _, want := range []string{"4 elements", "Resistor   2", "Wire       1", "Ground     1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNetlistCheck_Invalid(t *testing.T) {
	path := writeFile(t, "bad.net", "R;0,0;5,0;1e+3;\nR;0,0;5,0;4k7;")

	_, err := execute(t, "", "netlist", "check", path)
	if err == nil {
		t.Fatal("netlist check of malformed file succeeded")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q does not name line 2", err)
	}
}

func TestNetlistFmt_Stdin(t *testing.T) {
	out, err := execute(t, "  R ; 0,0 ; 5,0 ; 4700 ; R1 \n\n C;1,1;2,2;0.000001;", "netlist", "fmt", "-")
	if err != nil {
		t.Fatalf("netlist fmt error = %v", err)
	}
	want := "R;0,0;5,0;4.7e+3;R1\nC;1,1;2,2;1e-6;\n"
	if out != want {
		t.Errorf("netlist fmt = %q, want %q", out, want)
	}
}

func TestToken(t *testing.T) {
	t.Setenv("SCHEMATIC_JWT_SECRET", "")
	configPath := writeConfig(t, "")

	out, err := execute(t, "", "--config", configPath, "token", "--subject", "bench", "--role", "viewer")
	if err != nil {
		t.Fatalf("token error = %v", err)
	}

	claims, err := auth.ParseToken(strings.TrimSpace(out), testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "bench" || claims.Role != auth.RoleViewer {
		t.Errorf("claims = %+v", claims)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 30*time.Minute {
		t.Errorf("token lifetime = %v, want 30m from config", ttl)
	}
}

func TestToken_Errors(t *testing.T) {
	t.Setenv("SCHEMATIC_JWT_SECRET", "")
	configPath := writeConfig(t, "")

	if _, err := execute(t, "", "--config", configPath, "token"); err == nil {
		t.Error("token without --subject succeeded")
	}
	if _, err := execute(t, "", "--config", configPath, "token", "--subject", "a", "--role", "owner"); err == nil {
		t.Error("token with unknown role succeeded")
	}
}

func TestMigrate(t *testing.T) {
	t.Setenv("SCHEMATIC_JWT_SECRET", "")
	configPath := writeConfig(t, "")

	out, err := execute(t, "", "--config", configPath, "migrate")
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	for _, name := range []string{"projects", "audit_logs"} {
		if !strings.Contains(out, name) {
			t.Errorf("migrate output missing %s:\n%s", name, out)
		}
	}
	if strings.Contains(out, "pending") {
		t.Errorf("migrate left pending migrations:\n%s", out)
	}

	out, err = execute(t, "", "--config", configPath, "migrate", "down", "--steps", "1")
	if err != nil {
		t.Fatalf("migrate down error = %v", err)
	}
	if !strings.Contains(out, "rolled back 1 migration(s)") {
		t.Errorf("migrate down output = %q", out)
	}

	out, err = execute(t, "", "--config", configPath, "migrate", "status")
	if err != nil {
		t.Fatalf("migrate status error = %v", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "audit_logs") && !strings.Contains(line, "pending") {
			t.Errorf("audit_logs not pending after rollback: %q", line)
		}
	}

	if _, err := execute(t, "", "--config", configPath, "migrate", "down", "--steps", "0"); err == nil {
		t.Error("migrate down --steps 0 succeeded")
	}
}
