// Package scanner owns the badge camera lifecycle and QR decode loop.
package scanner
