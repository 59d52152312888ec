// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"sort"
	"strconv"
	"strings"
)

// Inputs are the named string parameters of a workflow dispatch. They
// are passed to the remote system verbatim.
type Inputs map[string]string

// Keys returns the input names in sorted order.
func (inputs Inputs) Keys() []string {
	keys := make([]string, 0, len(inputs))
	for key := range inputs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// BuildParams are the inputs of the image build pipeline.
type BuildParams struct {
	// Commit is the hash to build; the image is tagged with it.
	Commit string

	// Features are cargo-style feature flags enabled for the build.
	Features []string

	// Profile is the build profile, e.g. "release".
	Profile string
}

// Inputs returns the build pipeline's dispatch inputs. Additional
// testing images are always requested so that a test pipeline can run
// against any build exprun starts.
func (p BuildParams) Inputs() Inputs {
	return Inputs{
		"GIT_SHA":                   p.Commit,
		"FEATURES":                  strings.Join(p.Features, ","),
		"PROFILE":                   p.Profile,
		"BUILD_ADDL_TESTING_IMAGES": "true",
	}
}

// TestParams are the inputs of the forge test pipeline.
type TestParams struct {
	// Commit is the image tag to test.
	Commit string

	// DurationSeconds is how long the test runner drives load.
	DurationSeconds int

	// Suite is the test suite name, e.g. "land_blocking".
	Suite string

	// Cluster is the cluster the test is scheduled on.
	Cluster string
}

// Inputs returns the test pipeline's dispatch inputs. The same commit
// names both the image under test and the test runner's image.
func (p TestParams) Inputs() Inputs {
	return Inputs{
		"IMAGE_TAG":                  p.Commit,
		"FORGE_IMAGE_TAG":            p.Commit,
		"FORGE_RUNNER_DURATION_SECS": strconv.Itoa(p.DurationSeconds),
		"FORGE_TEST_SUITE":           p.Suite,
		"FORGE_CLUSTER_NAME":         p.Cluster,
	}
}
