// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import "testing"

func TestStatusFromGitHub(t *testing.T) {
	tests := []struct {
		status, conclusion string
		want               Status
	}{
		{"queued", "", StatusPending},
		{"waiting", "", StatusPending},
		{"in_progress", "", StatusRunning},
		{"completed", "success", StatusSucceeded},
		{"completed", "neutral", StatusSucceeded},
		{"completed", "failure", StatusFailed},
		{"completed", "cancelled", StatusFailed},
		{"completed", "timed_out", StatusFailed},
		{"completed", "startup_failure", StatusFailed},
		{"completed", "action_required", StatusFailed},
		{"something_new", "", StatusRunning},
	}
	for _, test := range tests {
		if got := statusFromGitHub(test.status, test.conclusion); got != test.want {
			t.Errorf("statusFromGitHub(%q, %q) = %q, want %q", test.status, test.conclusion, got, test.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, status := range []Status{StatusSucceeded, StatusFailed, StatusTimedOut} {
		if !status.Terminal() {
			t.Errorf("%q should be terminal", status)
		}
	}
	for _, status := range []Status{StatusPending, StatusRunning} {
		if status.Terminal() {
			t.Errorf("%q should not be terminal", status)
		}
	}
}

func TestTestParamsInputs(t *testing.T) {
	inputs := TestParams{Commit: "deadbeef", DurationSeconds: 480, Suite: "land_blocking", Cluster: "forge-e2e"}.Inputs()
	want := Inputs{
		"IMAGE_TAG":                  "deadbeef",
		"FORGE_IMAGE_TAG":            "deadbeef",
		"FORGE_RUNNER_DURATION_SECS": "480",
		"FORGE_TEST_SUITE":           "land_blocking",
		"FORGE_CLUSTER_NAME":         "forge-e2e",
	}
	if len(inputs) != len(want) {
		t.Fatalf("inputs = %v", inputs)
	}
	for key, value := range want {
		if inputs[key] != value {
			t.Errorf("inputs[%s] = %q, want %q", key, inputs[key], value)
		}
	}
}

func TestBuildParamsInputs_NoFeatures(t *testing.T) {
	inputs := BuildParams{Commit: "abc", Profile: "release"}.Inputs()
	if inputs["FEATURES"] != "" {
		t.Errorf("FEATURES = %q, want empty", inputs["FEATURES"])
	}
	if keys := inputs.Keys(); keys[0] != "BUILD_ADDL_TESTING_IMAGES" || keys[3] != "PROFILE" {
		t.Errorf("Keys() = %v, want sorted", keys)
	}
}
