// Package phasic provides a hierarchical state-machine runtime driven by
// declarative configuration documents.
//
// The core code is in package 'core', and some command-line tools are in `cmd`.
package phasic
