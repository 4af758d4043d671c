package assistant

import (
	"context"
	"io"

	"museum-tour-server/domain/capability"

	openai "github.com/sashabaranov/go-openai"
)

// 请求格式 → 实际输出格式与 Content-Type
// TTS 接口不产出 wav，请求 wav 时改为 mp3
var audioFormats = map[string]struct {
	format      openai.SpeechResponseFormat
	contentType string
}{
	"mp3":  {openai.SpeechResponseFormatMp3, "audio/mpeg"},
	"wav":  {openai.SpeechResponseFormatMp3, "audio/mpeg"},
	"opus": {openai.SpeechResponseFormatOpus, "audio/opus"},
	"aac":  {openai.SpeechResponseFormatAac, "audio/aac"},
	"flac": {openai.SpeechResponseFormatFlac, "audio/flac"},
}

// Voices 支持的音色
var Voices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

// AudioFormat 返回实际输出格式（文件扩展名）与 Content-Type；未知格式按 mp3 处理
func AudioFormat(requested string) (string, string) {
	f, ok := audioFormats[requested]
	if !ok {
		f = audioFormats["mp3"]
	}
	return string(f.format), f.contentType
}

// Synthesize 文本转语音，返回完整音频字节
func (c *Client) Synthesize(ctx context.Context, req capability.SpeechRequest) ([]byte, error) {
	voice := req.Voice
	if voice == "" {
		voice = c.cfg.Voice
	}
	format, _ := AudioFormat(req.Format)

	out, err := c.call(ctx, "tts", func(ctx context.Context) (interface{}, error) {
		resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(c.cfg.TTSModel),
			Input:          req.Text,
			Voice:          openai.SpeechVoice(voice),
			ResponseFormat: openai.SpeechResponseFormat(format),
		})
		if err != nil {
			return nil, err
		}
		defer resp.Close()

		// 必须在超时 ctx 取消前读完
		return io.ReadAll(resp)
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}
