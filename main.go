// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/maphost/clusterview/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
