// Package cachefile reads and writes translation cache files on disk.
// It turns a path into decoded lines for the converter, derives the
// destination name of a converted file, makes backups before in-place
// rewrites and reports missing files, invalid UTF-8 and write failures
// as distinct errors.
package cachefile
