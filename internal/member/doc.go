// Package member maintains the directory of community center members,
// including remote loading with a demo fallback and identifier resolution.
package member
