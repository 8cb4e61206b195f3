//go:build !cgo

package storage

// isUniqueViolation always reports false without cgo: go-sqlite3 compiles to
// a stub driver that cannot open a database, so no sqlite3.Error (the type is
// only defined in cgo builds) can ever appear in an error chain.
func isUniqueViolation(error) bool {
	return false
}
