package imghost

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const gravatarBase = "https://www.gravatar.com/avatar"

// GravatarURL returns the Gravatar image URL for an email address.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("%s/%s?d=identicon", gravatarBase, hex.EncodeToString(sum[:]))
}

// LookupGravatar probes Gravatar for the address and returns the image URL.
// The d=404 parameter makes Gravatar answer 404 when no image exists.
func LookupGravatar(ctx context.Context, email string) (string, error) {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	url := fmt.Sprintf("%s/%s?d=404", gravatarBase, hex.EncodeToString(sum[:]))

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gravatar returned status %d", resp.StatusCode)
	}
	return GravatarURL(email), nil
}
