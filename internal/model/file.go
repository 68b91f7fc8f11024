package model

import "time"

// File is the metadata record kept for every stored object.
// This is a pure domain model with no persistence-specific dependencies or tags,
// so it can move between the HTTP, service, and storage layers freely.
//
// Key is the object-store identifier. It is generated server-side and never
// derived from user input beyond the file extension; OriginalName is kept for
// display only and is never used for addressing.
type File struct {
	Key          string    `json:"key"`
	OriginalName string    `json:"original_name"`
	Description  string    `json:"description"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
