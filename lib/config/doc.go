// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads exprun's configuration: which repository and
// remote to publish experimental branches to, which workflows build and
// test them, where built images live, and how long to wait for runs.
//
// Configuration comes from a single file named by the --config flag or,
// failing that, the EXPRUN_CONFIG environment variable. Without either,
// [Default] is used unchanged. There is no automatic discovery: the
// effective configuration is always traceable to one file or none.
//
// Files may be YAML or JSONC (JSON with comments and trailing commas,
// selected by a .json or .jsonc extension). Values in the file override
// the defaults field by field; [Config.Validate] runs once after
// loading.
package config
