package validate

// Package validate implements the upload acceptance policy. Checks are pure:
// no I/O, no side effects on rejection, and a fixed evaluation order of
// transport error, then size, then content type — first failure wins.

import (
	"bytes"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Result classifies an upload against the policy.
type Result int

const (
	Accepted Result = iota
	// RejectedTransport means the upload stream itself reported an error
	// (truncated body, aborted request); checked before anything else.
	RejectedTransport
	// RejectedSize means the declared size strictly exceeds the cap.
	RejectedSize
	// RejectedType means the sniffed MIME type is not on the allow-list.
	RejectedType
)

func (r Result) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectedTransport:
		return "rejected_transport"
	case RejectedSize:
		return "rejected_size"
	case RejectedType:
		return "rejected_type"
	default:
		return "unknown"
	}
}

// Policy is the configured acceptance policy.
type Policy struct {
	MaxSizeBytes int64
	AllowedTypes []string
}

// Upload describes an incoming upload as far as the policy cares:
// whether the transport already failed, the declared byte size, and the
// MIME type sniffed from content (never the client-supplied header).
type Upload struct {
	TransportErr error
	Size         int64
	MIME         string
}

// Check evaluates an upload against the policy.
func Check(u Upload, p Policy) Result {
	if u.TransportErr != nil {
		return RejectedTransport
	}
	if u.Size > p.MaxSizeBytes {
		return RejectedSize
	}
	for _, t := range p.AllowedTypes {
		if u.MIME == t {
			return Accepted
		}
	}
	return RejectedType
}

// sniffLen matches the number of bytes mimetype needs for detection.
const sniffLen = 3072

// Sniff determines the MIME type of the stream by content inspection and
// returns a replacement reader that replays the inspected bytes, so the
// caller can still stream the full body. Parameters such as charset are
// stripped from the reported type.
func Sniff(r io.Reader) (string, io.Reader, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	header = header[:n]

	mime := mimetype.Detect(header).String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	return mime, io.MultiReader(bytes.NewReader(header), r), nil
}
