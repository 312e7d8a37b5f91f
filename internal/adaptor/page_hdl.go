package adaptor

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"click-collect/pkg/utils"

	"go.uber.org/zap"
)

// PageHandler serves the single page app. Unknown paths get index.html so
// client-side routes resolve after the access gate let them through. Files
// that exist under the web root are served by Static without gating.
type PageHandler struct {
	root string
	log  *zap.Logger
}

func NewPageHandler(root string, log *zap.Logger) *PageHandler {
	return &PageHandler{
		root: root,
		log:  log.With(zap.String("handler", "page")),
	}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		utils.ResponseJSON(w, http.StatusMethodNotAllowed, false, "Method not allowed", nil, nil)
		return
	}

	if name, ok := h.file(r); ok {
		http.ServeFile(w, r, name)
		return
	}

	index := filepath.Join(h.root, "index.html")
	if _, err := os.Stat(index); err != nil {
		h.log.Error("Web root has no index.html", zap.String("root", h.root), zap.Error(err))
		utils.ResponseNotFound(w, "Page not found")
		return
	}
	http.ServeFile(w, r, index)
}

// Static serves GET and HEAD requests for files present under the web root
// and passes everything else, including client-side routes, to next.
func (h *PageHandler) Static(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			if name, ok := h.file(r); ok {
				http.ServeFile(w, r, name)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// file maps the request path to a regular file under the web root.
func (h *PageHandler) file(r *http.Request) (string, bool) {
	clean := path.Clean("/" + r.URL.Path)
	if clean == "/" || clean == "/index.html" {
		return "", false
	}
	name := filepath.Join(h.root, filepath.FromSlash(clean))
	info, err := os.Stat(name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return name, true
}
