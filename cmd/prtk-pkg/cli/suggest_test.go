// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"doctor", "", 6},
		{"", "scripts", 7},
		{"doctor", "doctor", 0},
		{"doctr", "doctor", 1},
		{"sciprts", "scripts", 2},
		{"version", "verison", 2},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
		if got := levenshtein(test.b, test.a); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d (symmetry)", test.b, test.a, got, test.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{{Name: "doctor"}, {Name: "scripts"}, {Name: "version"}}

	tests := []struct {
		input string
		want  string
	}{
		{"doctr", "doctor"},
		{"script", "scripts"},
		{"verison", "version"},
		{"prov.xml", ""},
		{"/tmp/licenses/prov.xml", ""},
	}
	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.Bool("skip-import", false, "")
	flagSet.String("output-dir", "", "")
	flagSet.Bool("json", false, "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"typo", []string{"--skip-imprt"}, "--skip-import"},
		{"with value", []string{"--outptu-dir=/tmp"}, "--output-dir"},
		{"skips known flags", []string{"--json", "--ouput-dir", "x"}, "--output-dir"},
		{"too distant", []string{"--completely-different"}, ""},
		{"after terminator", []string{"--", "--skip-imprt"}, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, flagSet); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
