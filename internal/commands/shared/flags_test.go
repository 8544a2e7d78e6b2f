// Copyright 2025 Stepline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"errors"
	"testing"

	"github.com/steplinehq/stepline/internal/output"
)

func resetFormatFlags() {
	jsonFlag = false
	formatFlag = ""
}

func TestGetFormat(t *testing.T) {
	defer resetFormatFlags()

	tests := []struct {
		name   string
		json   bool
		format string
		want   string
	}{
		{name: "default is text", want: output.FormatText},
		{name: "format flag selects yaml", format: "yaml", want: output.FormatYAML},
		{name: "format flag selects json", format: "json", want: output.FormatJSON},
		{name: "json flag wins over format", json: true, format: "yaml", want: output.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonFlag = tt.json
			formatFlag = tt.format
			if got := GetFormat(); got != tt.want {
				t.Errorf("GetFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetFormatterSelection(t *testing.T) {
	defer resetFormatFlags()

	formatFlag = "yaml"
	if _, ok := GetFormatter().(*output.YAMLFormatter); !ok {
		t.Error("--format yaml should select the YAML formatter")
	}

	jsonFlag = true
	if _, ok := GetFormatter().(*output.JSONFormatter); !ok {
		t.Error("--json should select the JSON formatter")
	}
}

func TestValidateFormat(t *testing.T) {
	defer resetFormatFlags()

	for _, valid := range []string{"", "text", "json", "yaml"} {
		formatFlag = valid
		if err := ValidateFormat(); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", valid, err)
		}
	}

	formatFlag = "xml"
	err := ValidateFormat()
	if err == nil {
		t.Fatal("unknown format should be rejected")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitUsage {
		t.Errorf("unknown format should carry the usage exit code, got %v", err)
	}
}
