package build

import (
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"practiso-archive-service/internal/domain"
)

// Extension is the reserved file extension for Practiso archives.
const Extension = ".psarchive"

const archiveNamespace = "http://schema.zhufucdev.com/practiso"

// Archive is a materialized quiz collection ready for serialization. The
// on-disk format is the Practiso XML document, gzip-compressed.
type Archive struct {
	CreatedAt time.Time
	Quizzes   []domain.Quiz
}

type xmlArchive struct {
	XMLName   xml.Name  `xml:"archive"`
	Namespace string    `xml:"xmlns,attr"`
	Creation  string    `xml:"creation,attr"`
	Quizzes   []xmlQuiz `xml:"quiz"`
}

type xmlQuiz struct {
	Name     string    `xml:"name,attr,omitempty"`
	Creation string    `xml:"creation,attr"`
	Frames   xmlFrames `xml:"frames"`
}

type xmlFrames struct {
	Texts []xmlText `xml:"text"`
}

type xmlText struct {
	Content string `xml:",chardata"`
}

// Bytes renders the uncompressed XML document.
func (a Archive) Bytes() ([]byte, error) {
	doc := xmlArchive{
		Namespace: archiveNamespace,
		Creation:  a.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, quiz := range a.Quizzes {
		xq := xmlQuiz{
			Name:     quiz.Name,
			Creation: quiz.CreatedAt.UTC().Format(time.RFC3339),
		}
		for _, frame := range quiz.Frames {
			xq.Frames.Texts = append(xq.Frames.Texts, xmlText{Content: frame.Content})
		}
		doc.Quizzes = append(doc.Quizzes, xq)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal archive: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// WriteTo writes the gzip-compressed archive to w.
func (a Archive) WriteTo(w io.Writer) (int64, error) {
	raw, err := a.Bytes()
	if err != nil {
		return 0, err
	}
	zw := gzip.NewWriter(w)
	n, err := zw.Write(raw)
	if err != nil {
		return int64(n), fmt.Errorf("compress archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return int64(n), fmt.Errorf("flush archive: %w", err)
	}
	return int64(n), nil
}

// WriteFile writes the gzip-compressed archive to path and returns the
// on-disk size in bytes.
func (a Archive) WriteFile(path string) (int64, error) {
	fd, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create archive file: %w", err)
	}
	if _, err := a.WriteTo(fd); err != nil {
		fd.Close()
		return 0, err
	}
	if err := fd.Close(); err != nil {
		return 0, fmt.Errorf("close archive file: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat archive file: %w", err)
	}
	return info.Size(), nil
}
