package views

import (
	"embed"
	"io/fs"
)

//go:embed static
var embedded embed.FS

// Static expõe os ficheiros estáticos (css/...) com a raiz em static/.
func Static() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
