// Package directive handles jvmflow comment directives in listings.
//
// # Supported Directives
//
//	//jvmflow:ignore - Skip the analysis of the next method, or of the whole
//	                   listing when placed before the first .class
//
// # Directive Placement
//
// Directives can be placed:
//   - On the line before a .method directive (most common)
//   - On the same line as a .method directive
//   - Before the first .class directive (file-level ignore)
//
// # Examples
//
// Method-level ignore:
//
//	//jvmflow:ignore
//	.method static legacy()V
//
// Same-line ignore:
//
//	.method static legacy()V  //jvmflow:ignore
//
// File-level ignore:
//
//	// jvmflow:ignore
//	.class demo/Generated
package directive

import "strings"

const directivePrefix = "jvmflow:"

// hasDirective checks if a comment contains the specified directive.
// Supports both "//jvmflow:name" and "// jvmflow:name".
func hasDirective(text, name string) bool {
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, directivePrefix+name)
}

// IsIgnoreDirective checks if a comment is an ignore directive.
func IsIgnoreDirective(text string) bool { return hasDirective(text, "ignore") }
