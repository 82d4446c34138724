// Package mmfile provides read-only memory mapping of asset files.
package mmfile
