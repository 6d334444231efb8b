package httpapi

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// spaHandler serves the built dashboard. Paths that are not files fall back
// to index.html so client-side routes work on reload.
type spaHandler struct {
	dir        string
	fileServer http.Handler
}

func newSPAHandler(dir string) *spaHandler {
	return &spaHandler{
		dir:        dir,
		fileServer: http.FileServer(http.Dir(dir)),
	}
}

func (s *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if name != "/" {
		info, err := os.Stat(filepath.Join(s.dir, filepath.FromSlash(name)))
		if err == nil && !info.IsDir() {
			s.fileServer.ServeHTTP(w, r)
			return
		}
	}

	index := filepath.Join(s.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		writeJSON(w, http.StatusNotFound, Fail("frontend not built"))
		return
	}
	http.ServeFile(w, r, index)
}
