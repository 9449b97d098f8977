// Package converter detects which separator a translation cache file uses
// and rewrites its entries into the canonical "original=translated" layout.
// Everything here is a pure function of its input; reading and writing
// files is left to the cachefile package.
package converter
