package rpc

import "time"

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type CreateIdentityRequest struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type Identity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateSessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned by CreateSession and GetCurrentSession. Token is the
// value later sent in the access_token metadata.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token,omitempty"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type File struct {
	ID           string    `json:"id"`
	ContainerID  string    `json:"container_id"`
	Name         string    `json:"name"`
	MIMEType     string    `json:"mime_type"`
	SizeOriginal int64     `json:"size_original"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListFilesRequest struct {
	ContainerID string `json:"container_id"`
}

type ListFilesResponse struct {
	Files []File `json:"files"`
}

type GetFileRequest struct {
	ContainerID string `json:"container_id"`
	FileID      string `json:"file_id"`
}

type DeleteFileRequest struct {
	ContainerID string `json:"container_id"`
	FileID      string `json:"file_id"`
}

// CreateFileHeader opens a CreateFile stream. Size is advisory.
type CreateFileHeader struct {
	ContainerID string `json:"container_id"`
	FileID      string `json:"file_id"`
	Name        string `json:"name"`
	MIMEType    string `json:"mime_type"`
	Size        int64  `json:"size"`
}

// CreateFileChunk is one message of the CreateFile stream: the first one
// carries Header, every following one carries Data.
type CreateFileChunk struct {
	Header *CreateFileHeader `json:"header,omitempty"`
	Data   []byte            `json:"data,omitempty"`
}
