// Package randodo generates random text from small regex-like templates.
//
// The core code is in package 'core', definitions files are handled by
// 'defs', and some command-line tools are in `cmd`.
//
// See cmd/randodo for the simplest way to get samples and cmd/randodod
// for a service.
package randodo
