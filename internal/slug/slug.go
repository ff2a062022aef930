// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns arbitrary user-supplied names into strings that are
// safe to use as storage keys.
package slug

import (
	"path"
	"regexp"
	"strings"
)

var (
	// unsafeFilename matches anything that isn't an ASCII letter, digit or dot.
	unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9.]`)
	// multipleDots collapses ".." so a name can never climb a path.
	multipleDots = regexp.MustCompile(`\.{2,}`)
)

// maxFilenameLen bounds the sanitized name, keeping the extension.
const maxFilenameLen = 100

// Filename sanitizes an uploaded file name for use in a storage key. Every
// character outside [A-Za-z0-9.] becomes "_". Directory components are
// dropped and an empty result becomes "file".
// Example: "My Photo (1).JPG" → "My_Photo__1_.JPG"
func Filename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		name = ""
	}

	result := unsafeFilename.ReplaceAllString(name, "_")
	result = multipleDots.ReplaceAllString(result, ".")
	result = strings.TrimLeft(result, ".")

	if len(result) > maxFilenameLen {
		ext := path.Ext(result)
		if len(ext) > 10 {
			ext = ""
		}
		result = result[:maxFilenameLen-len(ext)] + ext
	}

	if result == "" {
		return "file"
	}
	return result
}
