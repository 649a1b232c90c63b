// Package telegram wraps the bot SDK calls the dispatcher needs beyond
// plain message sending.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FileAPI is the slice of the bot client used to resolve file downloads.
type FileAPI interface {
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

// Photos downloads chat photos through the bot file API.
type Photos struct {
	api    FileAPI
	token  string
	client *http.Client
}

func NewPhotos(api FileAPI, token string) *Photos {
	return &Photos{api: api, token: token, client: http.DefaultClient}
}

// Largest returns the file id of the biggest rendition of a photo message.
// Telegram orders photo sizes from smallest to largest.
func Largest(sizes []tgbotapi.PhotoSize) (string, bool) {
	if len(sizes) == 0 {
		return "", false
	}
	return sizes[len(sizes)-1].FileID, true
}

// Download fetches the photo bytes and sniffs their MIME type.
func (p *Photos) Download(ctx context.Context, fileID string) ([]byte, string, error) {
	file, err := p.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("telegram: resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(p.token), nil)
	if err != nil {
		return nil, "", fmt.Errorf("telegram: build download request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("telegram: download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("telegram: download file %s: %s", fileID, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("telegram: read file %s: %w", fileID, err)
	}
	return data, http.DetectContentType(data), nil
}
