package extractor

import (
	"mime"
	"path/filepath"
	"strings"
)

type Kind int

const (
	KindUnsupported Kind = iota
	KindVideo
	KindImage
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindImage:
		return "image"
	case KindDocument:
		return "document"
	default:
		return "unsupported"
	}
}

var (
	videoExts = map[string]string{
		".mp4": "video/mp4",
		".mov": "video/quicktime",
		".avi": "video/x-msvideo",
		".mkv": "video/x-matroska",
	}
	imageExts = map[string]string{
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".bmp":  "image/bmp",
		".gif":  "image/gif",
	}
	documentExts = map[string]string{
		".pdf":      "application/pdf",
		".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".txt":      "text/plain",
		".md":       "text/markdown",
		".markdown": "text/markdown",
		".xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
)

// Ext returns the lower-cased extension of path including the leading dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Classify maps a file extension to the extraction route it takes.
func Classify(ext string) Kind {
	ext = strings.ToLower(ext)
	if _, ok := videoExts[ext]; ok {
		return KindVideo
	}
	if _, ok := imageExts[ext]; ok {
		return KindImage
	}
	if _, ok := documentExts[ext]; ok {
		return KindDocument
	}
	return KindUnsupported
}

// MimeType guesses the content type for ext, falling back to application/octet-stream.
func MimeType(ext string) string {
	ext = strings.ToLower(ext)
	for _, m := range []map[string]string{videoExts, imageExts, documentExts} {
		if v, ok := m[ext]; ok {
			return v
		}
	}
	if v := mime.TypeByExtension(ext); v != "" {
		return v
	}
	return "application/octet-stream"
}
