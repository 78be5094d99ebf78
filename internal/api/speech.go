package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// DefaultTTSLang is the language sent to the tts service when none is configured.
const DefaultTTSLang = "ko-KR"

const audioField = "audio_file"

// Clip is a recorded audio clip ready for upload.
type Clip struct {
	Name        string
	ContentType string
	Data        []byte
}

type transcribeResponse struct {
	Text *string `json:"text"`
}

type speakRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Transcribe uploads clip to the stt service and returns the recognized text.
// A response without usable text is reported as a transcription error.
func (c *Client) Transcribe(ctx context.Context, clip Clip) (string, error) {
	if len(clip.Data) == 0 {
		return "", newError(KindTranscription, "audio clip is empty", nil)
	}
	body, contentType, err := multipartBody(clip)
	if err != nil {
		return "", newError(KindTranscription, "invalid request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stt", body)
	if err != nil {
		return "", newError(KindTranscription, "invalid request", err)
	}
	req.Header.Set("Content-Type", contentType)

	data, err := c.do(req, KindTranscription)
	if err != nil {
		return "", err
	}
	var payload transcribeResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", newError(KindTranscription, "malformed response", err)
	}
	if payload.Text == nil {
		return "", newError(KindTranscription, "no text in response", nil)
	}
	text := strings.TrimSpace(*payload.Text)
	if text == "" {
		return "", newError(KindTranscription, "nothing was recognized", nil)
	}
	return text, nil
}

// Speak synthesizes text in lang and returns the audio payload.
func (c *Client) Speak(ctx context.Context, text, lang string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newError(KindSpeech, "text is empty", nil)
	}
	if lang == "" {
		lang = DefaultTTSLang
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/tts", speakRequest{Text: text, Lang: lang})
	if err != nil {
		return nil, newError(KindSpeech, "invalid request", err)
	}
	data, err := c.do(req, KindSpeech)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, newError(KindSpeech, "empty audio payload", nil)
	}
	return data, nil
}

func multipartBody(clip Clip) (*bytes.Buffer, string, error) {
	name := clip.Name
	if name == "" {
		name = "recorded_audio.webm"
	}
	contentType := clip.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, audioField, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(clip.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
