package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// Upload - один файл, отправляемый в файловый сервис.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// FileClient - клиент файлового сервиса. Зависимость внедряется явно,
// с явным таймаутом, никаких глобальных синглтонов.
type FileClient struct {
	uploadURL  string
	httpClient *http.Client
}

// NewFileClient создает клиент файлового сервиса.
// uploadURL - полный адрес эндпоинта загрузки.
func NewFileClient(uploadURL string, timeout time.Duration) *FileClient {
	return &FileClient{
		uploadURL:  uploadURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// uploadResponse - ответ файлового сервиса на загрузку.
type uploadResponse struct {
	Files []struct {
		FileID  string `json:"file_id"`
		FileURL string `json:"file_url"`
	} `json:"files"`
}

// Upload отправляет файлы одним multipart-запросом и возвращает их URL
// в порядке загрузки. Заголовок Authorization пробрасывается дальше.
func (c *FileClient) Upload(ctx context.Context, authorization string, uploads []Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, u := range uploads {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename="%s"`, sanitizeFilename(u.Filename)))
		if u.ContentType != "" {
			header.Set("Content-Type", u.ContentType)
		}
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to build multipart request: %w", err)
		}
		if _, err := io.Copy(part, u.Reader); err != nil {
			return nil, fmt.Errorf("failed to read upload %q: %w", u.Filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("file service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("file upload failed: status %d: %s", resp.StatusCode, payload)
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode file service response: %w", err)
	}

	urls := make([]string, 0, len(decoded.Files))
	for _, f := range decoded.Files {
		urls = append(urls, f.FileURL)
	}
	return urls, nil
}

// sanitizeFilename убирает из имени файла пути и кавычки.
func sanitizeFilename(name string) string {
	name = name[strings.LastIndexByte(name, '/')+1:]
	name = name[strings.LastIndexByte(name, '\\')+1:]
	return strings.ReplaceAll(name, `"`, "")
}
