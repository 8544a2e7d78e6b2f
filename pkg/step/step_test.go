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

package step

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamKindString(t *testing.T) {
	tests := []struct {
		kind ParamKind
		want string
	}{
		{KindUnknown, "UNKNOWN"},
		{KindString, "STRING"},
		{KindNumber, "NUMBER"},
		{KindBoolean, "BOOLEAN"},
		{KindArray, "ARRAY"},
		{KindObject, "OBJECT"},
		{KindEnv, "ENV"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestParamKindStringUnknownValue(t *testing.T) {
	assert.Equal(t, "ParamKind(42)", ParamKind(42).String())
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("ENV")
	require.NoError(t, err)
	assert.Equal(t, KindEnv, kind)

	_, err = ParseKind("env")
	assert.Error(t, err, "kind names are case sensitive")
}

func TestParamKindJSONRoundTrip(t *testing.T) {
	p := Parameter{Name: "Channel", RawValue: "#support", Kind: KindString}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"STRING"`)

	var back Parameter
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestSpanLen(t *testing.T) {
	assert.Equal(t, 5, Span{Start: 10, End: 15}.Len())
	assert.Equal(t, 0, Span{Start: 3, End: 3}.Len())
}

func TestInstantiationParameter(t *testing.T) {
	inst := &Instantiation{
		VariableName: "notify",
		ClassName:    "SlackMessage",
		Parameters: []Parameter{
			{Name: "Channel", RawValue: "#support", Kind: KindString},
			{Name: "Urgent", RawValue: "true", Kind: KindBoolean},
		},
	}

	p := inst.Parameter("Urgent")
	require.NotNil(t, p)
	assert.Equal(t, KindBoolean, p.Kind)

	assert.Nil(t, inst.Parameter("Missing"))
}

func TestStaticRegistry(t *testing.T) {
	reg := NewStaticRegistry(map[string]Kind{
		"SlackMessage": "notification",
	})
	reg.Register("PostgresQuery", "database")

	assert.True(t, reg.IsKnown("SlackMessage"))
	assert.False(t, reg.IsKnown("Unknown"))

	kind, ok := reg.Kind("PostgresQuery")
	require.True(t, ok)
	assert.Equal(t, Kind("database"), kind)

	assert.Equal(t, []string{"PostgresQuery", "SlackMessage"}, reg.Classes())
}

func TestParseCatalog(t *testing.T) {
	reg, err := ParseCatalog([]byte("steps:\n  SlackMessage: notification\n  PostgresQuery: database\n"))
	require.NoError(t, err)
	assert.True(t, reg.IsKnown("SlackMessage"))
	assert.True(t, reg.IsKnown("PostgresQuery"))
}

func TestParseCatalogErrors(t *testing.T) {
	_, err := ParseCatalog([]byte("steps: [not a map"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("steps: {}\n"))
	assert.Error(t, err, "an empty catalog is a configuration error")
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}
