// Package config loads and validates fixture files of canned HTTP
// exchanges, written in YAML or JSON.
//
// A fixture file defines:
//   - Variables: values substituted into requests and responses
//   - Exchanges: a request template, the canned response that answers it
//     and the assertions the response must pass
//
// Basic Usage:
//
//	cfg, err := config.LoadConfig("fixtures/users.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ex, err := cfg.Lookup("createUser")
//	req, err := config.BuildRequest(ex, cfg.Variables)
//
// Variable Substitution:
//
// Variables are referenced with the {{variableName}} syntax in request
// URLs, header values and bodies, and in response headers and bodies.
//
//	url := config.ProcessEnvironment(ex.Request.URL, cfg.Variables)
//
// Configuration Validation:
//
// ValidateConfig checks every exchange and returns the problems found, in
// exchange name order:
//
//	errors := config.ValidateConfig(cfg)
//	for _, err := range errors {
//	    log.Printf("Validation error: %s", err)
//	}
package config
