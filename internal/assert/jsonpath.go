package assert

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract extracts a value from a JSON string using a JSONPath expression
func Extract(json string, path string) (string, error) {
	if json == "" {
		return "", fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.Valid(json) {
		return "", fmt.Errorf("body is not valid JSON")
	}

	result := gjson.Get(json, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}

	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

var bracketReplacer = strings.NewReplacer(`['`, ".", `']`, "", `["`, ".", `"]`, "", "[", ".", "]", "")

// toGjsonPath converts a JSONPath expression to gjson syntax.
//
//	$.users[0].name   -> users.0.name
//	$['users'][0]     -> users.0
//	$[1]              -> 1
//
// Filters, wildcards and recursive descent are not supported.
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "$")
	if path == "" {
		return "@this"
	}
	path = bracketReplacer.Replace(path)
	return strings.TrimPrefix(path, ".")
}
