// Package processor contains the conversion workflow for translation cache
// files. It reads a file, detects its separator, converts the entries,
// writes the result and reports each step. The CLI and the GUI both drive
// conversions through this package.
package processor
