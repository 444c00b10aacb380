package cli

import (
	"strings"
	"testing"
)

func TestReplayCmd(t *testing.T) {
	stdout, _, err := run(t, "replay", "-f", "testdata/users.yaml", "-e", "createUser", "-e", "deleteUser")
	if err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, stdout)
	}

	expectedParts := []string{
		"REQUEST: POST http://api.example.com/users",
		"RESPONSE: 201 HTTP/1.1",
		`"name": "ada"`,
		"createUser: 4/4 assertions passed",
		"REQUEST: DELETE http://api.example.com/users/1",
		"RESPONSE: 204",
		"deleteUser: 1/1 assertions passed",
	}
	for _, part := range expectedParts {
		if !strings.Contains(stdout, part) {
			t.Errorf("Expected output to contain %q, got:\n%s", part, stdout)
		}
	}
}

func TestReplayCmd_VarOverride(t *testing.T) {
	stdout, _, err := run(t, "replay", "-f", "testdata/users.yaml", "-e", "createUser", "--var", "host=localhost:9000")
	if err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "http://localhost:9000/users") {
		t.Errorf("Expected overridden host in output, got:\n%s", stdout)
	}
}

func TestReplayCmd_MultiChunkFails(t *testing.T) {
	_, _, err := run(t, "replay", "-f", "testdata/users.yaml", "-e", "chunked")
	if err == nil || err.Error() != "1 of 1 exchanges failed" {
		t.Errorf("Expected one failed exchange, got %v", err)
	}

	_, _, err = run(t, "replay", "-f", "testdata/users.yaml")
	if err == nil || err.Error() != "1 of 3 exchanges failed" {
		t.Errorf("Expected one of three exchanges to fail, got %v", err)
	}
}

func TestReplayCmd_FailingAssertion(t *testing.T) {
	stdout, _, err := run(t, "replay", "-f", "testdata/failing.json")
	if err == nil || err.Error() != "1 of 1 exchanges failed" {
		t.Errorf("Expected one failed exchange, got %v", err)
	}
	if !strings.Contains(stdout, "wrongStatus: 1/2 assertions passed") {
		t.Errorf("Expected partial pass in output, got:\n%s", stdout)
	}
}

func TestReplayCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing file flag", args: []string{"replay"}, want: "file"},
		{name: "missing file", args: []string{"replay", "-f", "testdata/nope.yaml"}, want: "nope.yaml"},
		{name: "unknown exchange", args: []string{"replay", "-f", "testdata/users.yaml", "-e", "nope"}, want: "nope"},
		{name: "bad var", args: []string{"replay", "-f", "testdata/users.yaml", "--var", "host"}, want: "invalid --var"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
