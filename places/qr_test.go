package places

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func TestQRDataURL(t *testing.T) {
	if got := qrDataURL(""); got != "" {
		t.Errorf("expected empty for empty link, got %q", got)
	}

	u := qrDataURL("https://www.google.com/maps/search/?api=1&query=35.67,139.73")
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(u, prefix) {
		t.Fatalf("unexpected data url %q", u)
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(u, prefix))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected a PNG")
	}
}
