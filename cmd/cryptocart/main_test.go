package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	yaml := `storage:
  driver: memory
logger:
  output: stderr
  level: error
admin:
  password: pw
  nonce_secret: nonce
debug_log:
  path: ` + filepath.Join(dir, "debug.log") + `
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	want := []string{"serve", "migrate", "gateways", "uninstall"}
	for _, name := range want {
		found := false
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestGatewaysCommands(t *testing.T) {
	dir := writeConfig(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"list", []string{"gateways", "list"}, "coinpayment", false},
		{"enable", []string{"gateways", "enable", "coinpayment"}, "Gateway coinpayment enabled", false},
		{"disable", []string{"gateways", "disable", "coinpayment"}, "Gateway coinpayment disabled", false},
		{"unknown", []string{"gateways", "enable", "paypal"}, "", true},
		{"migrate needs postgres", []string{"migrate"}, "", true},
		{"uninstall", []string{"uninstall"}, "CryptoCart options removed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"--config", dir}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want substring %q", out, tt.want)
			}
		})
	}
}
