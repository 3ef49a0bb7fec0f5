package upload

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/fluxdesk/helpdesk/internal/domain"
	apperrors "github.com/fluxdesk/helpdesk/pkg/util"
)

// MaxAttachmentSize is the inclusive upper bound for a single file. A file of
// exactly this size is accepted; anything larger is rejected.
const MaxAttachmentSize = 5 * 1024 * 1024

// FileInput is a raw uploaded file with its declared metadata.
type FileInput struct {
	Name         string
	DeclaredMime string
	Data         []byte
}

var allowedTypes = map[string]struct{}{
	"image/png":       {},
	"image/jpeg":      {},
	"application/pdf": {},
}

// Process validates one uploaded file and converts it into an inline
// attachment. Only PNG, JPEG and PDF are accepted; the declared MIME type is
// cross-checked against the sniffed content type.
func Process(input FileInput, maxSize int64) (domain.Attachment, error) {
	if maxSize <= 0 {
		maxSize = MaxAttachmentSize
	}
	if int64(len(input.Data)) > maxSize {
		return domain.Attachment{}, apperrors.NewAttachmentError(
			"file "+input.Name+" exceeds the size limit",
			map[string]any{"file": input.Name, "size_bytes": len(input.Data), "max_bytes": maxSize},
		)
	}

	mimeType := normalizeMime(input.DeclaredMime)
	if _, ok := allowedTypes[mimeType]; !ok {
		return domain.Attachment{}, apperrors.NewAttachmentError(
			"unsupported file type for "+input.Name+" (only PNG, JPG, PDF)",
			map[string]any{"file": input.Name, "mime_type": input.DeclaredMime},
		)
	}
	if sniffed := sniffMime(input.Data); sniffed != mimeType {
		return domain.Attachment{}, apperrors.NewAttachmentError(
			"file content does not match declared type for "+input.Name,
			map[string]any{"file": input.Name, "declared": mimeType, "detected": sniffed},
		)
	}

	encoded := base64.StdEncoding.EncodeToString(input.Data)
	return domain.Attachment{
		DataURI:   "data:" + mimeType + ";base64," + encoded,
		FileName:  input.Name,
		MimeType:  mimeType,
		SizeBytes: int64(len(input.Data)),
	}, nil
}

// ProcessAll validates a batch, failing fast on the first bad file.
func ProcessAll(inputs []FileInput, maxSize int64) ([]domain.Attachment, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	attachments := make([]domain.Attachment, 0, len(inputs))
	for _, input := range inputs {
		attachment, err := Process(input, maxSize)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, attachment)
	}
	return attachments, nil
}

func normalizeMime(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	if mimeType == "image/jpg" {
		return "image/jpeg"
	}
	return mimeType
}

func sniffMime(data []byte) string {
	// http.DetectContentType does not know PDF; check the magic bytes first.
	if len(data) >= 5 && string(data[:5]) == "%PDF-" {
		return "application/pdf"
	}
	return normalizeMime(http.DetectContentType(data))
}
