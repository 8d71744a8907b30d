package idea

import "strings"

// FileKind is the closed display categorization for attachments. It never
// affects validation or submission eligibility.
type FileKind string

const (
	KindImage   FileKind = "image"
	KindVideo   FileKind = "video"
	KindPDF     FileKind = "pdf"
	KindDoc     FileKind = "doc"
	KindSheet   FileKind = "xls"
	KindSlides  FileKind = "ppt"
	KindText    FileKind = "txt"
	KindDefault FileKind = "default"
)

// kindByMediaType is the exhaustive tag-to-kind table; anything not listed
// (and not an image/video prefix match) falls through to KindDefault.
var kindByMediaType = map[string]FileKind{
	"application/pdf":               KindPDF,
	"application/msword":            KindDoc,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": KindDoc,
	"application/vnd.ms-excel": KindSheet,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": KindSheet,
	"application/vnd.ms-powerpoint":                                     KindSlides,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": KindSlides,
	"text/plain": KindText,
}

// KindOf categorizes a media type for display.
func KindOf(mediaType string) FileKind {
	if strings.HasPrefix(mediaType, "image/") {
		return KindImage
	}
	if strings.HasPrefix(mediaType, "video/") {
		return KindVideo
	}
	if kind, ok := kindByMediaType[mediaType]; ok {
		return kind
	}
	return KindDefault
}

var kindLabels = map[FileKind]string{
	KindImage:  "IMAGE",
	KindVideo:  "VIDEO",
	KindPDF:    "PDF",
	KindDoc:    "DOC",
	KindSheet:  "XLS",
	KindSlides: "PPT",
	KindText:   "TXT",
}

// DisplayLabel renders the short badge text for a media type. Unrecognized
// types fall back to the uppercased subtype, or FILE when there is none.
func DisplayLabel(mediaType string) string {
	kind := KindOf(mediaType)
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	if _, subtype, found := strings.Cut(mediaType, "/"); found && subtype != "" {
		return strings.ToUpper(subtype)
	}
	return "FILE"
}
