package models

import (
	"time"

	"github.com/google/uuid"
)

// FileRecord is the durable metadata for an uploaded knowledge-base document.
// The file body itself lives in object storage and is not modeled here.
type FileRecord struct {
	ID         string    `json:"id" bson:"_id"`
	SubjectID  string    `json:"subjectId" bson:"subjectId"`
	Filename   string    `json:"filename" bson:"filename"`
	SizeBytes  int64     `json:"size" bson:"size"`
	ChunkCount int       `json:"chunkCount" bson:"chunkCount"`
	UploadedAt time.Time `json:"uploadDate" bson:"uploadDate"`
}

// NewFileRecord creates a file record with a fresh identifier.
func NewFileRecord(subjectID, filename string, sizeBytes int64, chunkCount int) *FileRecord {
	return &FileRecord{
		ID:         uuid.NewString(),
		SubjectID:  subjectID,
		Filename:   filename,
		SizeBytes:  sizeBytes,
		ChunkCount: chunkCount,
		UploadedAt: time.Now().UTC(),
	}
}
