package idea

import (
	"fmt"
	"strings"

	"github.com/teamideas/idea-portal/internal"
)

// MaxAttachmentSize is the per-file bound. 100 MiB, enforced gateway-side so
// oversized selections never reach the idea service.
const MaxAttachmentSize = 100 * 1024 * 1024

// Attachment is one selected file held in the draft.
type Attachment struct {
	Filename  string
	MediaType string
	Size      int64
	Content   []byte
}

func (a Attachment) Kind() FileKind {
	return KindOf(a.MediaType)
}

// Draft is the in-progress idea submission. It lives only in memory and is
// destroyed on successful submit or logout; it is never persisted.
type Draft struct {
	Title       string
	Description string
	Files       []Attachment
}

// TitleComplete and DescriptionComplete are the step completion predicates.
func (d *Draft) TitleComplete() bool {
	return strings.TrimSpace(d.Title) != ""
}

func (d *Draft) DescriptionComplete() bool {
	return strings.TrimSpace(d.Description) != ""
}

// AddFiles filters each candidate against the size bound. Oversized files
// are rejected individually with a notice and skipped; accepted files are
// appended preserving selection order.
func (d *Draft) AddFiles(files []Attachment) []internal.Notice {
	var notices []internal.Notice
	for _, file := range files {
		if file.Size > MaxAttachmentSize {
			notices = append(notices, internal.ErrorNotice(
				fmt.Sprintf("File %s is too large. Maximum size is 100MB", file.Filename)))
			continue
		}
		d.Files = append(d.Files, file)
	}
	return notices
}

// RemoveFile deletes by index; remaining files keep their relative order.
func (d *Draft) RemoveFile(index int) error {
	if index < 0 || index >= len(d.Files) {
		return internal.NewValidationError(
			fmt.Sprintf("no attachment at index %d", index), internal.ErrCodeInvalidFileIndex)
	}
	d.Files = append(d.Files[:index], d.Files[index+1:]...)
	return nil
}

// Reset empties the draft after a successful submit.
func (d *Draft) Reset() {
	d.Title = ""
	d.Description = ""
	d.Files = nil
}
