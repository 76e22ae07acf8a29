// Package common holds small helpers shared across clinicdesk packages.
package common

// WipeByteArray overwrites b with zeros, e.g. a password once it has been
// sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
