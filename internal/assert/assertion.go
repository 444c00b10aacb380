// Package assert evaluates declarative checks against exchanged responses.
package assert

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wesleyorama2/exchange/internal/http"
)

// Assertion is one check against a response. Exactly one target is set:
// Status, Version, Header, Path or Schema. When none is set the checks apply
// to the whole body.
type Assertion struct {
	Status  int    `json:"status,omitempty" yaml:"status,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Header  string `json:"header,omitempty" yaml:"header,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Schema  string `json:"schema,omitempty" yaml:"schema,omitempty"`

	Exists    *bool       `json:"exists,omitempty" yaml:"exists,omitempty"`
	Equals    interface{} `json:"equals,omitempty" yaml:"equals,omitempty"`
	Contains  string      `json:"contains,omitempty" yaml:"contains,omitempty"`
	Matches   string      `json:"matches,omitempty" yaml:"matches,omitempty"`
	IsArray   bool        `json:"isArray,omitempty" yaml:"isArray,omitempty"`
	MinLength *int        `json:"minLength,omitempty" yaml:"minLength,omitempty"`
}

// Result is the outcome of one assertion.
type Result struct {
	Passed  bool   `json:"passed" yaml:"passed"`
	Message string `json:"message" yaml:"message"`
}

func (a Assertion) targets() int {
	n := 0
	for _, set := range []bool{a.Status != 0, a.Version != "", a.Header != "", a.Path != "", a.Schema != ""} {
		if set {
			n++
		}
	}
	return n
}

// Validate reports a malformed assertion before any response is seen.
func (a Assertion) Validate() error {
	if a.targets() > 1 {
		return fmt.Errorf("assertion must target only one of status, version, header, path or schema")
	}
	if a.Status != 0 && (a.Status < 100 || a.Status > 999) {
		return fmt.Errorf("invalid status %d", a.Status)
	}
	if a.Version != "" {
		if _, err := http.ParseVersion(a.Version); err != nil {
			return err
		}
	}
	if a.Matches != "" {
		if _, err := regexp.Compile(a.Matches); err != nil {
			return fmt.Errorf("invalid regex pattern %q: %w", a.Matches, err)
		}
	}
	if a.Schema != "" {
		if _, err := CompileSchema(a.Schema); err != nil {
			return err
		}
	}
	compares := a.Equals != nil || a.Contains != "" || a.Matches != ""
	switch {
	case a.Header != "" && a.Exists == nil && !compares:
		return fmt.Errorf("header assertion needs exists, equals, contains or matches")
	case a.Path != "" && a.Exists == nil && !a.IsArray && a.MinLength == nil && !compares:
		return fmt.Errorf("path assertion needs exists, isArray, minLength, equals, contains or matches")
	case a.targets() == 0 && !compares:
		return fmt.Errorf("body assertion needs equals, contains or matches")
	}
	return nil
}

// Evaluate runs a against resp.
func Evaluate(a Assertion, resp *http.Response[string]) Result {
	switch {
	case a.Status != 0:
		return evaluateStatus(a, resp)
	case a.Version != "":
		return evaluateVersion(a, resp)
	case a.Header != "":
		return evaluateHeader(a, resp)
	case a.Path != "":
		return evaluatePath(a, resp)
	case a.Schema != "":
		return evaluateSchema(a, resp)
	default:
		return evaluateBody(a, resp)
	}
}

// EvaluateAll runs every assertion and returns the results in order.
func EvaluateAll(assertions []Assertion, resp *http.Response[string]) []Result {
	results := make([]Result, 0, len(assertions))
	for _, a := range assertions {
		results = append(results, Evaluate(a, resp))
	}
	return results
}

// Failed counts the failed results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}

func pass(format string, args ...interface{}) Result {
	return Result{Passed: true, Message: fmt.Sprintf(format, args...)}
}

func fail(format string, args ...interface{}) Result {
	return Result{Passed: false, Message: fmt.Sprintf(format, args...)}
}

func evaluateStatus(a Assertion, resp *http.Response[string]) Result {
	if resp.StatusCode() != a.Status {
		return fail("Status code is %d, expected %d", resp.StatusCode(), a.Status)
	}
	return pass("Status code is %d", resp.StatusCode())
}

func evaluateVersion(a Assertion, resp *http.Response[string]) Result {
	want, err := http.ParseVersion(a.Version)
	if err != nil {
		return fail("%v", err)
	}
	if resp.Version() != want {
		return fail("Version is %s, expected %s", resp.Version(), want)
	}
	return pass("Version is %s", want)
}

func evaluateHeader(a Assertion, resp *http.Response[string]) Result {
	name := a.Header
	actual, present := resp.Headers().FirstValue(name)

	if a.Exists != nil {
		if *a.Exists != present {
			return fail("Header %s exists: %v, expected: %v", name, present, *a.Exists)
		}
		return pass("Header %s exists: %v", name, present)
	}
	if !present {
		return fail("Header %s is missing", name)
	}
	return compare("Header "+name, actual, a)
}

func evaluatePath(a Assertion, resp *http.Response[string]) Result {
	value, err := Extract(resp.Body(), a.Path)

	if a.Exists != nil {
		found := err == nil
		if *a.Exists != found {
			return fail("Path %s exists: %v, expected: %v", a.Path, found, *a.Exists)
		}
		return pass("Path %s exists: %v", a.Path, found)
	}
	if err != nil {
		return fail("Failed to extract path %s: %v", a.Path, err)
	}

	if a.IsArray || a.MinLength != nil {
		var items []interface{}
		if err := json.Unmarshal([]byte(value), &items); err != nil {
			return fail("Path %s is not an array", a.Path)
		}
		if a.MinLength != nil && len(items) < *a.MinLength {
			return fail("Path %s has %d items, expected at least %d", a.Path, len(items), *a.MinLength)
		}
		if a.Equals == nil && a.Contains == "" && a.Matches == "" {
			return pass("Path %s is an array of %d items", a.Path, len(items))
		}
	}
	return compare("Path "+a.Path, value, a)
}

func evaluateSchema(a Assertion, resp *http.Response[string]) Result {
	if errs := ValidateBody(resp.Body(), a.Schema); errs != nil {
		return fail("Body does not match schema: %v", errs)
	}
	return pass("Body matches schema")
}

func evaluateBody(a Assertion, resp *http.Response[string]) Result {
	return compare("Body", resp.Body(), a)
}

// compare applies equals, contains and matches in that order. All that are
// set must hold.
func compare(subject, actual string, a Assertion) Result {
	var passed []string
	if a.Equals != nil {
		want := stringify(a.Equals)
		if actual != want {
			return fail("%s value is %q, expected %q", subject, actual, want)
		}
		passed = append(passed, fmt.Sprintf("equals %q", want))
	}
	if a.Contains != "" {
		if !strings.Contains(actual, a.Contains) {
			return fail("%s value %q does not contain %q", subject, actual, a.Contains)
		}
		passed = append(passed, fmt.Sprintf("contains %q", a.Contains))
	}
	if a.Matches != "" {
		pattern, err := regexp.Compile(a.Matches)
		if err != nil {
			return fail("Invalid regex pattern: %s", a.Matches)
		}
		if !pattern.MatchString(actual) {
			return fail("%s value %q does not match pattern %s", subject, actual, a.Matches)
		}
		passed = append(passed, fmt.Sprintf("matches %s", a.Matches))
	}
	if len(passed) == 0 {
		return fail("%s: nothing to check", subject)
	}
	return pass("%s %s", subject, strings.Join(passed, ", "))
}

// stringify renders decoded YAML and JSON scalars the way they read in the
// fixture. JSON numbers decode as float64.
func stringify(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
