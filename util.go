package bimrsid

// WhichSQLiteDriver names the database/sql driver the variant index uses in
// this build: "sqlite3" with cgo, "sqlite" without.
func WhichSQLiteDriver() string {
	return whichSQLiteDriver
}
