package upload

import (
	"strings"
	"testing"
)

var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0}
	pdfHeader  = []byte("%PDF-1.4\n")
)

func pngOfSize(size int) []byte {
	data := make([]byte, size)
	copy(data, pngHeader)
	return data
}

func TestProcessAcceptsSupportedTypes(t *testing.T) {
	cases := []struct {
		name         string
		declaredMime string
		data         []byte
		wantMime     string
	}{
		{"png", "image/png", pngHeader, "image/png"},
		{"jpeg", "image/jpeg", jpegHeader, "image/jpeg"},
		{"jpeg declared as jpg", "image/jpg", jpegHeader, "image/jpeg"},
		{"pdf", "application/pdf", pdfHeader, "application/pdf"},
		{"mime with charset suffix", "application/pdf; charset=binary", pdfHeader, "application/pdf"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attachment, err := Process(FileInput{Name: "file", DeclaredMime: tc.declaredMime, Data: tc.data}, 0)
			if err != nil {
				t.Fatalf("Process returned error: %v", err)
			}
			if attachment.MimeType != tc.wantMime {
				t.Errorf("MimeType = %q, want %q", attachment.MimeType, tc.wantMime)
			}
			if attachment.SizeBytes != int64(len(tc.data)) {
				t.Errorf("SizeBytes = %d, want %d", attachment.SizeBytes, len(tc.data))
			}
			if !strings.HasPrefix(attachment.DataURI, "data:"+tc.wantMime+";base64,") {
				t.Errorf("DataURI prefix wrong: %q", attachment.DataURI)
			}
		})
	}
}

func TestProcessSizeBoundary(t *testing.T) {
	// The limit is inclusive: exactly MaxAttachmentSize passes, one byte
	// more does not.
	if _, err := Process(FileInput{Name: "exact", DeclaredMime: "image/png", Data: pngOfSize(MaxAttachmentSize)}, MaxAttachmentSize); err != nil {
		t.Fatalf("file of exactly the limit rejected: %v", err)
	}
	if _, err := Process(FileInput{Name: "over", DeclaredMime: "image/png", Data: pngOfSize(MaxAttachmentSize + 1)}, MaxAttachmentSize); err == nil {
		t.Fatal("file one byte over the limit accepted")
	}
}

func TestProcessRejectsBadFiles(t *testing.T) {
	cases := []struct {
		name         string
		declaredMime string
		data         []byte
	}{
		{"unsupported type", "image/gif", []byte("GIF89a")},
		{"executable declared as png", "image/png", []byte("MZ\x90\x00")},
		{"text declared as pdf", "application/pdf", []byte("hello world")},
		{"empty declared mime", "", pngHeader},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Process(FileInput{Name: "bad", DeclaredMime: tc.declaredMime, Data: tc.data}, 0); err == nil {
				t.Fatal("expected rejection, got nil error")
			}
		})
	}
}

func TestProcessAllFailsFast(t *testing.T) {
	inputs := []FileInput{
		{Name: "ok.png", DeclaredMime: "image/png", Data: pngHeader},
		{Name: "bad.gif", DeclaredMime: "image/gif", Data: []byte("GIF89a")},
	}
	attachments, err := ProcessAll(inputs, 0)
	if err == nil {
		t.Fatal("expected error for batch with invalid file")
	}
	if attachments != nil {
		t.Errorf("expected nil attachments on failure, got %d", len(attachments))
	}

	if got, err := ProcessAll(nil, 0); err != nil || got != nil {
		t.Errorf("empty batch: got %v, %v", got, err)
	}
}
