// Package media turns Google Drive file identifiers into renderable addresses.
package media

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
)

type Kind string

const (
	KindPicture Kind = "picture"
	KindClip    Kind = "clip"
)

// ErrInvalidID is returned instead of building an address from a malformed id.
var ErrInvalidID = fmt.Errorf("%w: invalid media identifier", apperr.ErrValidation)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{25,50}$`)

// Extraction shapes, tried in this order.
var addrPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`id=([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/d/([A-Za-z0-9_-]+)`),
}

const driveBase = "https://drive.google.com"

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPicture, "image":
		return KindPicture, nil
	case KindClip, "video":
		return KindClip, nil
	}
	return "", apperr.Validation("unsupported media kind %q", s)
}

func Valid(id string) bool {
	return idPattern.MatchString(strings.TrimSpace(id))
}

// Resolve builds the display address for id. No request is made to check the
// file exists; a broken reference only shows up when the client renders it.
func Resolve(id string, kind Kind) (string, error) {
	id = strings.TrimSpace(id)
	if !idPattern.MatchString(id) {
		return "", ErrInvalidID
	}
	switch kind {
	case KindPicture:
		return driveBase + "/thumbnail?id=" + id + "&sz=w1000", nil
	case KindClip:
		return driveBase + "/file/d/" + id + "/preview", nil
	}
	return "", apperr.Validation("unsupported media kind %q", kind)
}

func ViewURL(id string) (string, error) {
	id = strings.TrimSpace(id)
	if !idPattern.MatchString(id) {
		return "", ErrInvalidID
	}
	return driveBase + "/file/d/" + id + "/view", nil
}

func DownloadURL(id string) (string, error) {
	id = strings.TrimSpace(id)
	if !idPattern.MatchString(id) {
		return "", ErrInvalidID
	}
	return driveBase + "/uc?export=download&id=" + id, nil
}

// ExtractID recovers the file id from a full Drive address. Input that matches
// no known shape is assumed to already be an id.
func ExtractID(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	for _, p := range addrPatterns {
		if m := p.FindStringSubmatch(addr); len(m) == 2 && m[1] != "" {
			return m[1]
		}
	}
	return addr
}

type Info struct {
	ID          string `json:"id"`
	ViewURL     string `json:"view_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Valid       bool   `json:"valid"`
}

func Describe(id string) Info {
	info := Info{ID: strings.TrimSpace(id), Valid: Valid(id)}
	if info.Valid {
		info.ViewURL, _ = ViewURL(id)
		info.DownloadURL, _ = DownloadURL(id)
	}
	return info
}
