// Package filesystem reads local directory trees for searching.
//
// Walker enumerates regular files below a root in a stable order, honouring
// hidden-file, exclusion, .gitignore and symlink settings. Reader serves file
// bodies with byte limits and cancellation.
package filesystem
