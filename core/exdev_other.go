//go:build !unix

package core

func isEXDEV(err error) bool {
	return false
}
