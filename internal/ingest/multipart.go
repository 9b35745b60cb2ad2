package ingest

import (
	stderrors "errors"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"filehub/pkg/errors"
)

// UploadedFile is one file part of a multipart body.
type UploadedFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// PartReader yields the file parts of a multipart/form-data body in body
// order. Plain form fields are skipped. It cannot be rewound.
type PartReader struct {
	mr *multipart.Reader
}

// NewPartReader validates the Content-Type header and prepares to stream body.
func NewPartReader(body io.Reader, contentType string) (*PartReader, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, errors.MalformedUpload("Invalid Content-Type header", err)
	}
	if !strings.EqualFold(mediaType, "multipart/form-data") {
		return nil, errors.MalformedUpload("Content-Type must be multipart/form-data", nil)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, errors.MalformedUpload("Missing multipart boundary", nil)
	}

	return &PartReader{mr: multipart.NewReader(body, boundary)}, nil
}

// Next returns the next file part, or io.EOF once the body is exhausted.
func (r *PartReader) Next() (*UploadedFile, error) {
	for {
		part, err := r.mr.NextPart()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.MalformedUpload("Unable to parse multipart body", err)
		}

		filename := part.FileName()
		if filename == "" {
			part.Close()
			continue
		}

		payload, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, errors.MalformedUpload("Unable to read multipart part", err)
		}

		return &UploadedFile{
			Filename:    filename,
			ContentType: part.Header.Get("Content-Type"),
			Payload:     payload,
		}, nil
	}
}

// ExtractFiles drains a PartReader into a slice.
func ExtractFiles(body io.Reader, contentType string) ([]*UploadedFile, error) {
	reader, err := NewPartReader(body, contentType)
	if err != nil {
		return nil, err
	}

	var files []*UploadedFile
	for {
		file, err := reader.Next()
		if stderrors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
}
