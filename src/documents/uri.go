package documents

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"go.lsp.dev/uri"
)

// URIToFilePath converts a file:// URI to a file system path
func URIToFilePath(docURI uri.URI) string {
	raw := string(docURI)
	if !strings.HasPrefix(raw, "file://") {
		return raw
	}

	path := strings.TrimPrefix(raw, "file://")

	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}

	// Windows file URIs look like file:///C:/path; after trimming the
	// scheme a leading slash remains before the drive letter.
	if runtime.GOOS == "windows" && len(path) > 2 {
		if path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
		path = filepath.FromSlash(path)
	}

	return path
}

// FilePathToURI converts a file system path to a file:// URI
func FilePathToURI(path string) uri.URI {
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)

	if runtime.GOOS == "windows" && filepath.IsAbs(path) {
		return uri.URI("file:///" + path)
	}

	if strings.HasPrefix(path, "/") {
		return uri.URI("file://" + path)
	}

	return uri.URI("file://" + path)
}
