// Package utils holds small shared helpers: lenient JSON decoding for
// third-party statement provider payloads and markdown validation for
// generated reports.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON defects in provider payloads:
// single quotes, trailing commas, unquoted keys, comments, markdown fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON and re-emits standard JSON. Hjson
// tolerates comments, unquoted keys/strings and optional commas, which makes
// it the last-resort decoder for sloppy upstream data.
func ParseHJSON(data string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(data), &result); err != nil {
		return "", fmt.Errorf("hjson parse failed: %v", err)
	}
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("json marshal failed: %v", err)
	}
	return string(jsonBytes), nil
}

// SmartParse tries multiple decoding strategies against a target schema, in
// increasing order of leniency:
//  1. standard JSON
//  2. JSON repair
//  3. Hjson
func SmartParse(input string, schema interface{}) error {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	if converted, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(converted), schema); err == nil {
			return nil
		}
	}

	return fmt.Errorf("smart parse: all decoding strategies failed")
}
