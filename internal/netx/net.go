// Package netx holds small HTTP helpers shared by client packages.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/amanotes/internal/common"
)

// PutPresigned uploads body to a presigned object-storage URL.
func PutPresigned(ctx context.Context, c *http.Client, url, contentType string, body []byte) error {
	if c == nil {
		c = http.DefaultClient
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("%w: upload: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: upload failed: %s; body: %s", common.ErrTransport, resp.Status, string(b))
	}
	return nil
}
