package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// errNoCode marks a decode attempt that saw no QR code in frame. It is
// transient noise, never surfaced to the operator.
var errNoCode = errors.New("no code in frame")

// Decoder produces one decoded string per invocation from a camera device.
type Decoder interface {
	DecodeOnce(ctx context.Context, device string) (string, error)
}

// zbarDecoder shells out to zbarcam for a single decode.
type zbarDecoder struct {
	binary string
}

// NewZbarDecoder returns a Decoder backed by the zbarcam binary.
func NewZbarDecoder(binary string) Decoder {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "zbarcam"
	}
	return &zbarDecoder{binary: binary}
}

func (d *zbarDecoder) DecodeOnce(ctx context.Context, device string) (string, error) {
	args := []string{"--raw", "-1", "--nodisplay", device}
	cmd := exec.CommandContext(ctx, d.binary, args...) //nolint:gosec
	output, err := cmd.Output()
	text := strings.TrimSpace(string(output))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if text == "" {
			// zbarcam exits non-zero when no symbol was read in time.
			return "", errNoCode
		}
		return "", fmt.Errorf("run %s: %w", d.binary, err)
	}
	if text == "" {
		return "", errNoCode
	}
	return text, nil
}

// badgePayload is the JSON schema embedded in generated QR badges.
type badgePayload struct {
	RegistrationNumber string `json:"registrationNumber"`
	FirstName          string `json:"firstName,omitempty"`
	LastName           string `json:"lastName,omitempty"`
	Occupation         string `json:"occupation,omitempty"`
	PhoneNumber        string `json:"phoneNumber,omitempty"`
	StudyOrWorkPlace   string `json:"studyOrWorkPlace,omitempty"`
	Timestamp          string `json:"timestamp,omitempty"`
}

// ExtractIdentifier pulls the registration identifier out of decoded text.
// A JSON badge payload yields its registrationNumber field; anything that
// fails JSON parsing is treated as a bare identifier string.
func ExtractIdentifier(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") {
		var payload badgePayload
		if err := json.Unmarshal([]byte(text), &payload); err == nil && payload.RegistrationNumber != "" {
			return payload.RegistrationNumber
		}
	}
	return text
}
