// Package notify delivers operator notifications through ntfy.
package notify
