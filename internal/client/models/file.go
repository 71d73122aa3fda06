package models

import (
	"io"
	"strings"
	"time"
)

// FileRecord is the metadata of a stored file. Records are immutable; the
// only change a record ever sees is its deletion.
type FileRecord struct {
	ID           string
	ContainerID  string
	Name         string
	MIMEType     string
	SizeOriginal int64
	CreatedAt    time.Time
}

// IsImage reports whether a preview can be rendered for the file.
func (f FileRecord) IsImage() bool {
	return strings.HasPrefix(f.MIMEType, "image/")
}

// LocalFile is a file chosen for upload. Content is read once.
type LocalFile struct {
	Name     string
	MIMEType string
	Size     int64
	Content  io.Reader
}
