package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentKind distinguishes uploaded files from plain links.
type AttachmentKind string

const (
	AttachmentFile AttachmentKind = "file"
	AttachmentLink AttachmentKind = "link"
)

// Attachment is an already-encoded attachment record. The core treats
// PayloadRef as opaque; encoding is the file collaborator's concern.
type Attachment struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Timestamp time.Time      `json:"timestamp"`
	Kind      AttachmentKind `json:"kind"`
	// PayloadRef may be absent after sanitization.
	PayloadRef string `json:"payloadRef,omitempty"`
	PreviewRef string `json:"previewRef,omitempty"`
}

// Sanitized returns a copy safe for persistence: file attachments lose their
// binary payload and preview references, link attachments are kept whole.
func (a Attachment) Sanitized() Attachment {
	if a.Kind == AttachmentFile {
		a.PayloadRef = ""
		a.PreviewRef = ""
	}
	return a
}
