package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// BodyKind selects how a request payload is encoded on the wire.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyMultipart
)

// File is one file part of a multipart body.
type File struct {
	Field   string
	Name    string
	Content []byte
}

// Body describes a request payload independently of its encoding.
type Body struct {
	Kind    BodyKind
	Payload map[string]any
	Files   []File
}

func JSONBody(payload map[string]any) Body {
	return Body{Kind: BodyJSON, Payload: payload}
}

func MultipartBody(fields map[string]any, files ...File) Body {
	return Body{Kind: BodyMultipart, Payload: fields, Files: files}
}

// With returns a copy of b with key set to value. A BodyNone body becomes
// a JSON body.
func (b Body) With(key string, value any) Body {
	out := b
	if out.Kind == BodyNone {
		out.Kind = BodyJSON
	}
	out.Payload = make(map[string]any, len(b.Payload)+1)
	for k, v := range b.Payload {
		out.Payload[k] = v
	}
	out.Payload[key] = value
	return out
}

// encode renders the body and reports the content type to send. An empty
// content type means the header is left unset.
func (b Body) encode() (io.Reader, string, error) {
	switch b.Kind {
	case BodyNone:
		return nil, "", nil
	case BodyJSON:
		payload := b.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("marshal request: %w", err)
		}
		return bytes.NewReader(raw), "application/json", nil
	case BodyMultipart:
		return b.encodeMultipart()
	default:
		return nil, "", fmt.Errorf("unknown body kind %d", b.Kind)
	}
}

func (b Body) encodeMultipart() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range b.Payload {
		if err := w.WriteField(k, formValue(v)); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range b.Files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("write file part %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	// boundary travels in the content type
	return &buf, w.FormDataContentType(), nil
}

func formValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool, int, int64, float64:
		return fmt.Sprint(x)
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	}
}
