package assets

import (
	"embed"
	"io/fs"
)

//go:embed cards.yaml sql/*.sql
var FS embed.FS

// Cards returns the embedded card catalog (YAML).
func Cards() ([]byte, error) {
	return FS.ReadFile("cards.yaml")
}

// Migrations returns the embedded migration directory rooted at sql/.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// sql/ is embedded at compile time; a miss here is a build problem.
		panic(err)
	}
	return sub
}
