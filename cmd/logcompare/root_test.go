package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmdHasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	want := []string{"compare", "inspect", "history", "config"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestCompareRequiresTwoPaths(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no paths", []string{"compare"}},
		{"one path", []string{"compare", "only.logarchive"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)

			if err := cmd.Execute(); err == nil {
				t.Error("expected a usage error for insufficient paths")
			}
		})
	}
}

func TestInspectRequiresExactlyOnePath(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"inspect", "a.logarchive", "b.logarchive"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected a usage error for extra paths")
	}
	if !strings.Contains(out.String(), "Usage") && out.Len() == 0 {
		t.Log("no usage output captured; cobra may route it elsewhere")
	}
}
