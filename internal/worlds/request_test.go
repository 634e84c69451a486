package worlds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCreateRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want CreateRequest
	}{
		{"empty", "", CreateRequest{}},
		{"whitespace", "  \n", CreateRequest{}},
		{"malformed", `{"name":`, CreateRequest{}},
		{"not an object", `[1,2,3]`, CreateRequest{}},
		{"string", `"hello"`, CreateRequest{}},
		{"null", `null`, CreateRequest{}},
		{"empty object", `{}`, CreateRequest{}},
		{
			"all fields",
			`{"name":"Dune","seed":"abc","sea_level":10.5,"temperature":90,"humidity":0}`,
			CreateRequest{Name: ptr("Dune"), Seed: ptr("abc"), SeaLevel: ptr(10.5), Temperature: ptr(90.0), Humidity: ptr(0.0)},
		},
		{
			"wrong types are unset",
			`{"name":5,"seed":{"a":1},"sea_level":true,"temperature":[1],"humidity":"wet"}`,
			CreateRequest{},
		},
		{
			"nulls are unset",
			`{"name":null,"seed":null,"sea_level":null}`,
			CreateRequest{},
		},
		{
			"numeric strings are unset",
			`{"sea_level":"42","temperature":" 17.5 ","humidity":""}`,
			CreateRequest{},
		},
		{
			"numeric string beside a number",
			`{"sea_level":"42","humidity":7}`,
			CreateRequest{Humidity: ptr(7.0)},
		},
		{
			"out of range kept",
			`{"sea_level":-5,"humidity":1000}`,
			CreateRequest{SeaLevel: ptr(-5.0), Humidity: ptr(1000.0)},
		},
		{
			"empty strings stay set for text fields",
			`{"name":"","seed":""}`,
			CreateRequest{Name: ptr(""), Seed: ptr("")},
		},
		{
			"unknown keys ignored",
			`{"radius":12,"name":"X"}`,
			CreateRequest{Name: ptr("X")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCreateRequest([]byte(tt.body)))
		})
	}
}
