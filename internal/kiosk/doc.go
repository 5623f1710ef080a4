// Package kiosk ties the member registry, badge scanner, check-in workflow,
// and attendance log into a single supervised lifecycle.
package kiosk
