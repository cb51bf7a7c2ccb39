// +build !debug

// Package tag provides build tag dependent constants.
package tag

const Debug = false
