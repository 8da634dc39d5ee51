// Package http provides the JSON API server and its handlers.
//
// This file implements the parsing and validation of request data shared by
// the handlers.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"spesa/internal/core"
)

const (
	maxJSONBody    = 1 << 20
	maxImportBody  = 16 << 20
	maxReceiptBody = 10 << 20
)

var receiptImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// decodeJSON reads a single JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return bodyError(err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON value", errBadRequest)
	}
	return nil
}

// readBody returns the raw body, capped at limit bytes.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, bodyError(err)
	}
	return data, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errPayloadTooLarge
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty body", errBadRequest)
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// parsePeriod reads the period query parameter; absent means last 30 days.
func parsePeriod(q url.Values) (core.Period, error) {
	p, err := core.ParsePeriod(q.Get("period"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return p, nil
}

// parseDay resolves an optional date field, defaulting to now.
func parseDay(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return now, nil
	}
	return core.ParseLocalDate(s)
}

// requiredQuery returns a sanitized non-empty query parameter.
func requiredQuery(q url.Values, name string) (string, error) {
	v := sanitizeInput(q.Get(name))
	if v == "" {
		return "", fmt.Errorf("%w: missing %s", errBadRequest, name)
	}
	return v, nil
}

// ReceiptUpload is a parsed receipt form.
type ReceiptUpload struct {
	Image         []byte
	MimeType      string
	PaymentMethod string
	PaymentStatus core.PaymentStatus
	Vendor        string
}

// parseReceiptUpload reads the multipart receipt form: the image file plus
// optional paymentMethod, paymentStatus and vendor fields.
func parseReceiptUpload(w http.ResponseWriter, r *http.Request) (*ReceiptUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBody)
	if err := r.ParseMultipartForm(maxReceiptBody); err != nil {
		return nil, bodyError(err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("%w: missing image", errBadRequest)
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return nil, bodyError(err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", errBadRequest)
	}

	mimeType := ""
	if ct := header.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			mimeType = mt
		}
	}
	if !receiptImageTypes[mimeType] {
		mimeType = http.DetectContentType(image)
	}
	if !receiptImageTypes[mimeType] {
		return nil, fmt.Errorf("%w: %s", errUnsupportedImage, mimeType)
	}

	status := core.PaymentStatus(sanitizeInput(r.FormValue("paymentStatus")))
	switch status {
	case "", core.PaymentDue, core.PaymentPaid:
	default:
		return nil, fmt.Errorf("%w: payment status %q", core.ErrInvalidStatus, status)
	}

	return &ReceiptUpload{
		Image:         image,
		MimeType:      mimeType,
		PaymentMethod: sanitizeInput(r.FormValue("paymentMethod")),
		PaymentStatus: status,
		Vendor:        sanitizeInput(r.FormValue("vendor")),
	}, nil
}
