package rpc

import (
	"net/url"
	"strconv"
	"strings"
)

// Route templates of the public HTTP surface, in echo syntax.
const (
	DownloadRoute = "/v1/storage/buckets/:container/files/:id/download"
	PreviewRoute  = "/v1/storage/buckets/:container/files/:id/preview"
)

func filePath(base, containerID, fileID string) string {
	return strings.TrimRight(base, "/") +
		"/v1/storage/buckets/" + url.PathEscape(containerID) +
		"/files/" + url.PathEscape(fileID)
}

// DownloadURL is the public URL serving the original bytes of a file.
func DownloadURL(base, containerID, fileID string) string {
	return filePath(base, containerID, fileID) + "/download"
}

// PreviewURL is the public URL of a resized image rendition. Non-positive
// dimensions are left out and the server applies its defaults.
func PreviewURL(base, containerID, fileID string, width, height int) string {
	q := url.Values{}
	if width > 0 {
		q.Set("width", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("height", strconv.Itoa(height))
	}
	u := filePath(base, containerID, fileID) + "/preview"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
