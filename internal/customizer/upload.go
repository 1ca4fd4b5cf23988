package customizer

import (
	"encoding/base64"
	"strings"
)

// MaxLogoBytes caps logo uploads at 5 MiB.
const MaxLogoBytes = 5 * 1024 * 1024

// RejectReason says why an upload was dropped.
type RejectReason string

const (
	RejectNotImage RejectReason = "not_image"
	RejectTooLarge RejectReason = "too_large"
)

// LogoUpload is a candidate logo file as received from the form.
type LogoUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AcceptLogo validates the upload and, when acceptable, stores it as the
// current logo and notifies watchers. Invalid files block silently: the
// state is left untouched and only the optional rejection callback hears
// about it.
func (s *State) AcceptLogo(u LogoUpload) bool {
	if !strings.HasPrefix(u.ContentType, "image/") {
		s.reject(RejectNotImage)
		return false
	}
	if len(u.Data) > MaxLogoBytes {
		s.reject(RejectTooLarge)
		return false
	}

	s.logo = &Logo{
		FileName: u.FileName,
		DataURI:  "data:" + u.ContentType + ";base64," + base64.StdEncoding.EncodeToString(u.Data),
	}
	s.notify()
	return true
}

func (s *State) reject(reason RejectReason) {
	if s.OnLogoRejected != nil {
		s.OnLogoRejected(reason)
	}
}

// DecodeDataURI splits a data URI back into content type and raw bytes.
// Used by the preview renderer to composite the logo.
func DecodeDataURI(uri string) (contentType string, data []byte, ok bool) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, false
	}
	rest := strings.TrimPrefix(uri, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return "", nil, false
	}
	return rest[:sep], raw, true
}
