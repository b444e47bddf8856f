package biji

import _ "embed"

// Version is the release version of biji.
//
//go:embed VERSION
var Version string
