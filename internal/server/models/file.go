package models

import "time"

// File is the metadata of a stored object. The bytes live in the blob store
// under StorageKey.
type File struct {
	ID           string
	ContainerID  string
	OwnerID      string
	Name         string
	MIMEType     string
	SizeOriginal int64
	StorageKey   string
	CreatedAt    time.Time
}

// StorageKey builds the blob key of a file.
func StorageKey(containerID, fileID string) string {
	return containerID + "/" + fileID
}
