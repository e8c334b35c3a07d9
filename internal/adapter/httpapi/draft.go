package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
)

const (
	// maxDraftBody leaves room for ten images at the size limit plus form
	// fields, so oversized images still reach the media validator.
	maxDraftBody    = 64 << 20
	multipartMemory = 32 << 20
	imagesField     = "images"
	photoField      = "image"
)

var errNotMultipart = errors.New("expected multipart/form-data or application/json body")

// parseDraft reads a draft either as multipart form (text fields plus
// "images" files) or as a JSON document.
func parseDraft(w http.ResponseWriter, r *http.Request) (domain.Draft, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDraftBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var d domain.Draft
		if err := decodeJSON(r, &d); err != nil {
			return domain.Draft{}, err
		}
		return d, nil
	case "multipart/form-data":
	default:
		return domain.Draft{}, errNotMultipart
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return domain.Draft{}, fmt.Errorf("parse form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	d := domain.Draft{
		Title:       r.FormValue(domain.FieldTitle),
		Description: r.FormValue(domain.FieldDescription),
		Price:       r.FormValue(domain.FieldPrice),
		Category:    r.FormValue(domain.FieldCategory),
		Condition:   r.FormValue(domain.FieldCondition),
		Province:    r.FormValue(domain.FieldProvince),
		City:        r.FormValue(domain.FieldCity),
		PostalCode:  r.FormValue(domain.FieldPostalCode),
	}
	for _, fh := range r.MultipartForm.File[imagesField] {
		img, err := readImage(fh)
		if err != nil {
			return domain.Draft{}, err
		}
		d.Images = append(d.Images, img)
	}
	return d, nil
}

// parsePhoto reads the single "image" file of a photo upload.
func parsePhoto(w http.ResponseWriter, r *http.Request) (domain.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDraftBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return domain.Image{}, fmt.Errorf("parse form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[photoField]
	if len(files) != 1 {
		return domain.Image{}, fmt.Errorf("expected exactly one %q file", photoField)
	}
	return readImage(files[0])
}

func readImage(fh *multipart.FileHeader) (domain.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Image{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Image{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return domain.Image{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
