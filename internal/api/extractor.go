package api

import (
	"context"
	"net/http"
)

// Image is a screenshot as uploaded by the user.
type Image struct {
	Data     []byte
	MIMEType string
}

func (i Image) ContentType() string {
	if i.MIMEType != "" {
		return i.MIMEType
	}
	return http.DetectContentType(i.Data)
}

// Extractor sends a screenshot to a hosted vision model and returns the raw
// message content, which should be {"values":[...]} but is never trusted.
type Extractor interface {
	Extract(ctx context.Context, apiKey string, img Image) ([]byte, error)
	Provider() string
}
