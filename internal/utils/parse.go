package utils

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStringAs unmarshals JSON content into T. When that fails the input is
// run through jsonrepair and unmarshaled again, so hand-edited input with
// single quotes, bare keys or trailing commas is accepted. Errors never echo
// the input, which may hold API keys.
//
//	raw, err := ParseStringAs[map[string]any](`{apiType: 'gemini', model: 'gemini-pro',}`)
func ParseStringAs[T any](content string) (T, error) {
	var result T
	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}
	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: %w (repair error: %v)", result, err, repairErr)
	}
	var retry T
	if err := json.Unmarshal([]byte(repaired), &retry); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", result, err)
	}
	return retry, nil
}
