package worlds

import (
	"bytes"
	"encoding/json"
)

// ParseCreateRequest decodes a world creation payload. It never fails: an
// empty or malformed body, or a body that is not a JSON object, yields an
// empty request, and any field of the wrong type is left unset. A numeric
// string such as "42" is a string, not a number, so climate fields given
// one stay unset.
func ParseCreateRequest(body []byte) CreateRequest {
	var req CreateRequest

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return req
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return req
	}

	req.Name = stringField(fields["name"])
	req.Seed = stringField(fields["seed"])
	req.SeaLevel = numberField(fields["sea_level"])
	req.Temperature = numberField(fields["temperature"])
	req.Humidity = numberField(fields["humidity"])
	return req
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func stringField(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func numberField(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}
